package sites_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/usecase"
	"github.com/heritage-sites-service/internal/worker/sites"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockSiteRepository is a mock of SiteRepository
type MockSiteRepository struct {
	mock.Mock
}

func (m *MockSiteRepository) GetAll(ctx context.Context) ([]*domain.Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Site), args.Error(1)
}

func (m *MockSiteRepository) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Site, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Site), args.Error(1)
}

func (m *MockSiteRepository) Upsert(ctx context.Context, patch *domain.SitePatch) error {
	args := m.Called(ctx, patch)
	return args.Error(0)
}

func (m *MockSiteRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSiteRepository) Deduplicate(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSiteRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// fakeSyncer counts sync invocations
type fakeSyncer struct {
	calls int32
	err   error
}

func (f *fakeSyncer) SyncSitesFromRemote(ctx context.Context) error {
	atomic.AddInt32(&f.calls, 1)
	return f.err
}

// ============================================================================
// SiteSyncWorker Tests
// ============================================================================

func TestSiteSyncWorker_Name(t *testing.T) {
	w := sites.NewSiteSyncWorker(&fakeSyncer{}, time.Minute, zap.NewNop())
	assert.Equal(t, "site-sync", w.Name())
}

func TestSiteSyncWorker_RunsImmediatelyThenOnTicks(t *testing.T) {
	syncer := &fakeSyncer{}
	w := sites.NewSiteSyncWorker(syncer, 50*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(180 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}

	calls := atomic.LoadInt32(&syncer.calls)
	assert.GreaterOrEqual(t, calls, int32(2), "first run fires before the first tick")
}

func TestSiteSyncWorker_SyncFailureKeepsTicking(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("remote down")}
	w := sites.NewSiteSyncWorker(syncer, 40*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	assert.GreaterOrEqual(t, atomic.LoadInt32(&syncer.calls), int32(2),
		"a failed run must not kill the schedule")
}

func TestSiteSyncWorker_Stop(t *testing.T) {
	w := sites.NewSiteSyncWorker(&fakeSyncer{}, time.Minute, zap.NewNop())

	// Stop should not error even if not started
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

// ============================================================================
// NearbyRecalcWorker Tests
// ============================================================================

func newNearbyWorker(streamRepo *MockStreamRepository, siteRepo *MockSiteRepository) *sites.NearbyRecalcWorker {
	nearbyUC := usecase.NewNearbyUseCase(siteRepo, streamRepo, zap.NewNop())
	return sites.NewNearbyRecalcWorker(streamRepo, nearbyUC, "test-group", zap.NewNop())
}

func TestNearbyRecalcWorker_Name(t *testing.T) {
	w := newNearbyWorker(&MockStreamRepository{}, &MockSiteRepository{})
	assert.Equal(t, "nearby-recalc", w.Name())
}

func TestNearbyRecalcWorker_ContextCancellation(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockSites := &MockSiteRepository{}
	w := newNearbyWorker(mockStream, mockSites)

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamNearbyRecalc, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamNearbyRecalc, "test-group", mock.AnythingOfType("string"), 20).
		Return([]domain.StreamMessage{}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}
}

func TestNearbyRecalcWorker_ProcessesAndAcksEvents(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockSites := &MockSiteRepository{}
	w := newNearbyWorker(mockStream, mockSites)

	event := domain.NearbyRecalcEvent{EventID: "evt-1", SiteID: 1}
	eventJSON, _ := json.Marshal(event)

	messages := []domain.StreamMessage{
		{ID: "1234567890-0", Data: string(eventJSON)},
		{ID: "1234567890-1", Data: "not json"},
	}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamNearbyRecalc, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamNearbyRecalc, "test-group", mock.AnythingOfType("string"), 20).
		Return(messages, nil).Once()
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamNearbyRecalc, "test-group", mock.AnythingOfType("string"), 20).
		Return([]domain.StreamMessage{}, nil)

	// Site 1 has a nearby list to recalculate
	site := &domain.Site{
		ID: 1, Latitude: 7.957, Longitude: 80.7603,
		Nearby: []domain.NearbyRef{{ID: "2"}},
	}
	target := &domain.Site{ID: 2, Latitude: 7.9748, Longitude: 80.7605}
	mockSites.On("GetByID", mock.Anything, int64(1)).Return(site, nil)
	mockSites.On("GetByID", mock.Anything, int64(2)).Return(target, nil)
	mockSites.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	// Both messages get acknowledged, the malformed one included
	mockStream.On("AckMessage", mock.Anything, domain.StreamNearbyRecalc, "test-group", "1234567890-0").
		Return(nil)
	mockStream.On("AckMessage", mock.Anything, domain.StreamNearbyRecalc, "test-group", "1234567890-1").
		Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop in time")
	}

	mockStream.AssertExpectations(t)
	mockSites.AssertExpectations(t)
}

func TestNearbyRecalcWorker_RecalcFailureStillAcks(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockSites := &MockSiteRepository{}
	w := newNearbyWorker(mockStream, mockSites)

	event := domain.NearbyRecalcEvent{EventID: "evt-1", SiteID: 404}
	eventJSON, _ := json.Marshal(event)

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamNearbyRecalc, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamNearbyRecalc, "test-group", mock.AnythingOfType("string"), 20).
		Return([]domain.StreamMessage{{ID: "1-0", Data: string(eventJSON)}}, nil).Once()
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamNearbyRecalc, "test-group", mock.AnythingOfType("string"), 20).
		Return([]domain.StreamMessage{}, nil)

	mockSites.On("GetByID", mock.Anything, int64(404)).Return(nil, nil)

	// Recalc is idempotent: the failed event is still acknowledged
	mockStream.On("AckMessage", mock.Anything, domain.StreamNearbyRecalc, "test-group", "1-0").
		Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop in time")
	}

	mockStream.AssertExpectations(t)
}
