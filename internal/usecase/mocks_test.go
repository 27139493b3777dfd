package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/heritage-sites-service/internal/domain"
)

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

// MockUserSiteRepository is a mock of UserSiteRepository
type MockUserSiteRepository struct {
	mock.Mock
}

func (m *MockUserSiteRepository) AddFavorite(ctx context.Context, userID string, siteID int64) error {
	args := m.Called(ctx, userID, siteID)
	return args.Error(0)
}

func (m *MockUserSiteRepository) RemoveFavorite(ctx context.Context, userID string, siteID int64) error {
	args := m.Called(ctx, userID, siteID)
	return args.Error(0)
}

func (m *MockUserSiteRepository) GetFavorites(ctx context.Context, userID string) ([]*domain.FavoriteSite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FavoriteSite), args.Error(1)
}

func (m *MockUserSiteRepository) IsFavorited(ctx context.Context, userID string, siteID int64) (bool, error) {
	args := m.Called(ctx, userID, siteID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserSiteRepository) AddVisited(ctx context.Context, visit *domain.VisitedSite) error {
	args := m.Called(ctx, visit)
	return args.Error(0)
}

func (m *MockUserSiteRepository) RemoveVisited(ctx context.Context, userID string, siteID int64) error {
	args := m.Called(ctx, userID, siteID)
	return args.Error(0)
}

func (m *MockUserSiteRepository) GetVisited(ctx context.Context, userID string) ([]*domain.VisitedSite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VisitedSite), args.Error(1)
}

func (m *MockUserSiteRepository) IsVisited(ctx context.Context, userID string, siteID int64) (bool, error) {
	args := m.Called(ctx, userID, siteID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserSiteRepository) BulkAddFavorites(ctx context.Context, favorites []*domain.FavoriteSite) error {
	args := m.Called(ctx, favorites)
	return args.Error(0)
}

func (m *MockUserSiteRepository) BulkAddVisited(ctx context.Context, visits []*domain.VisitedSite) error {
	args := m.Called(ctx, visits)
	return args.Error(0)
}

// MockRemoteSiteRepository is a mock of RemoteSiteRepository
type MockRemoteSiteRepository struct {
	mock.Mock
}

func (m *MockRemoteSiteRepository) FetchAll(ctx context.Context) ([]*domain.RemoteSiteDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RemoteSiteDocument), args.Error(1)
}

func (m *MockRemoteSiteRepository) FetchUserFavorites(ctx context.Context, userID string) ([]*domain.RemoteFavorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RemoteFavorite), args.Error(1)
}

func (m *MockRemoteSiteRepository) FetchUserVisited(ctx context.Context, userID string) ([]*domain.RemoteVisit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RemoteVisit), args.Error(1)
}

func (m *MockRemoteSiteRepository) PushUserFavorites(ctx context.Context, userID string, favorites []*domain.FavoriteSite) error {
	args := m.Called(ctx, userID, favorites)
	return args.Error(0)
}

func (m *MockRemoteSiteRepository) PushUserVisited(ctx context.Context, userID string, visits []*domain.VisitedSite) error {
	args := m.Called(ctx, userID, visits)
	return args.Error(0)
}

func (m *MockRemoteSiteRepository) Ping(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// MockAppStateRepository is a mock of AppStateRepository
type MockAppStateRepository struct {
	mock.Mock
}

func (m *MockAppStateRepository) GetSyncState(ctx context.Context) (*domain.SyncState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncState), args.Error(1)
}

func (m *MockAppStateRepository) SetSyncState(ctx context.Context, state *domain.SyncState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

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
