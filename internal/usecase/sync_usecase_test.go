package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/usecase"
)

type syncMocks struct {
	siteRepo     *MockSiteRepository
	userSiteRepo *MockUserSiteRepository
	remoteRepo   *MockRemoteSiteRepository
	appStateRepo *MockAppStateRepository
}

func newSyncUseCase() (*usecase.SyncUseCase, *syncMocks) {
	m := &syncMocks{
		siteRepo:     new(MockSiteRepository),
		userSiteRepo: new(MockUserSiteRepository),
		remoteRepo:   new(MockRemoteSiteRepository),
		appStateRepo: new(MockAppStateRepository),
	}
	uc := usecase.NewSyncUseCase(m.siteRepo, m.userSiteRepo, m.remoteRepo, m.appStateRepo, zap.NewNop())
	return uc, m
}

func ptrF(v float64) *float64 {
	return &v
}

// ============================================================================
// GetAllSitesWithSync Tests
// ============================================================================

func TestGetAllSitesWithSync_Offline_ServesCache(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	cached := []*domain.Site{{ID: 1, Name: "Sigiriya"}}
	m.remoteRepo.On("Ping", mock.Anything).Return(false)
	m.siteRepo.On("GetAll", mock.Anything).Return(cached, nil)

	sites := uc.GetAllSitesWithSync(ctx)

	assert.Equal(t, cached, sites)
	m.remoteRepo.AssertNotCalled(t, "FetchAll", mock.Anything)
}

func TestGetAllSitesWithSync_RemoteFailure_ServesCache(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	cached := []*domain.Site{{ID: 1, Name: "Sigiriya"}, {ID: 2, Name: "Dambulla"}}
	m.remoteRepo.On("Ping", mock.Anything).Return(true)
	m.remoteRepo.On("FetchAll", mock.Anything).Return(nil, errors.New("connection reset"))
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Return(nil)
	m.siteRepo.On("GetAll", mock.Anything).Return(cached, nil)

	sites := uc.GetAllSitesWithSync(ctx)

	assert.Equal(t, cached, sites, "a failed pull must not hide cached content")
}

func TestGetAllSitesWithSync_LocalReadFailure_ReturnsEmptyList(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	m.remoteRepo.On("Ping", mock.Anything).Return(false)
	m.siteRepo.On("GetAll", mock.Anything).Return(nil, errors.New("db down"))

	sites := uc.GetAllSitesWithSync(ctx)

	require.NotNil(t, sites)
	assert.Empty(t, sites)
}

func TestGetAllSitesWithSync_EmptyCache_ReturnsEmptyList(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	m.remoteRepo.On("Ping", mock.Anything).Return(false)
	m.siteRepo.On("GetAll", mock.Anything).Return([]*domain.Site(nil), nil)

	sites := uc.GetAllSitesWithSync(ctx)

	require.NotNil(t, sites)
	assert.Empty(t, sites)
}

// ============================================================================
// SyncSitesFromRemote Tests
// ============================================================================

func TestSyncSitesFromRemote_UpsertsNormalizedDocuments(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	docs := []*domain.RemoteSiteDocument{
		{
			ID:            "7",
			Name:          "Temple of the Tooth",
			OpeningHours:  "05:30-20:00",
			VisitingHours: "ignored legacy value",
			Image:         "tooth.jpg",
			Latitude:      ptrF(7.2936),
			Longitude:     ptrF(80.6413),
		},
	}

	var captured *domain.SitePatch
	m.remoteRepo.On("FetchAll", mock.Anything).Return(docs, nil)
	m.siteRepo.On("GetByID", mock.Anything, int64(7)).Return(nil, nil)
	m.siteRepo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*domain.SitePatch)
	}).Return(nil)
	m.siteRepo.On("Deduplicate", mock.Anything).Return(int64(0), nil)
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Return(nil)

	err := uc.SyncSitesFromRemote(ctx)

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, int64(7), captured.ID)
	assert.Equal(t, "7", captured.RemoteID)
	assert.Equal(t, "05:30-20:00", *captured.VisitingHours, "admin alias wins over legacy field")
	assert.Equal(t, "tooth.jpg", *captured.ImageURL)
}

func TestSyncSitesFromRemote_Idempotent(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	docs := []*domain.RemoteSiteDocument{{ID: "1", Name: "Sigiriya"}}

	var patches []*domain.SitePatch
	m.remoteRepo.On("Ping", mock.Anything).Return(true)
	m.remoteRepo.On("FetchAll", mock.Anything).Return(docs, nil)
	m.siteRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, nil)
	m.siteRepo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		patches = append(patches, args.Get(1).(*domain.SitePatch))
	}).Return(nil)
	m.siteRepo.On("Deduplicate", mock.Anything).Return(int64(0), nil)
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, uc.SyncSitesFromRemote(ctx))
	require.NoError(t, uc.SyncSitesFromRemote(ctx))

	require.Len(t, patches, 2)
	assert.Equal(t, patches[0].ID, patches[1].ID, "same payload must address the same row twice")
	assert.Equal(t, *patches[0].Name, *patches[1].Name)
}

func TestSyncSitesFromRemote_PerDocumentIsolation(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	docs := []*domain.RemoteSiteDocument{
		{ID: "", Name: "No id, must be skipped"},
		{ID: "2", Name: "Dambulla"},
	}

	var state *domain.SyncState
	m.remoteRepo.On("FetchAll", mock.Anything).Return(docs, nil)
	m.siteRepo.On("GetByID", mock.Anything, int64(2)).Return(nil, nil)
	m.siteRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	m.siteRepo.On("Deduplicate", mock.Anything).Return(int64(0), nil)
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		state = args.Get(1).(*domain.SyncState)
	}).Return(nil)

	err := uc.SyncSitesFromRemote(ctx)

	require.NoError(t, err, "a bad document must not abort the run")
	require.NotNil(t, state)
	assert.True(t, state.Success)
	assert.Equal(t, 1, state.SitesSynced)
	assert.Equal(t, 1, state.SitesFailed)
	m.siteRepo.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestSyncSitesFromRemote_NonNumericIDStable(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	docs := []*domain.RemoteSiteDocument{{ID: "sigiriya-rock", Name: "Sigiriya"}}

	var ids []int64
	m.remoteRepo.On("FetchAll", mock.Anything).Return(docs, nil)
	m.siteRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)
	m.siteRepo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ids = append(ids, args.Get(1).(*domain.SitePatch).ID)
	}).Return(nil)
	m.siteRepo.On("Deduplicate", mock.Anything).Return(int64(0), nil)
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, uc.SyncSitesFromRemote(ctx))
	require.NoError(t, uc.SyncSitesFromRemote(ctx))

	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1], "hashed id must be stable across runs")
	assert.Positive(t, ids[0])
}

func TestSyncSitesFromRemote_FetchFailureRecorded(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	var state *domain.SyncState
	m.remoteRepo.On("FetchAll", mock.Anything).Return(nil, errors.New("504 gateway timeout"))
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		state = args.Get(1).(*domain.SyncState)
	}).Return(nil)

	err := uc.SyncSitesFromRemote(ctx)

	require.Error(t, err)
	require.NotNil(t, state)
	assert.False(t, state.Success)
	assert.Contains(t, state.Error, "504")
}

func TestSyncSitesFromRemote_SingleFlight(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})

	m.remoteRepo.On("FetchAll", mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return([]*domain.RemoteSiteDocument{}, nil)
	m.siteRepo.On("Deduplicate", mock.Anything).Return(int64(0), nil)
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Return(nil)

	done := make(chan error, 1)
	go func() {
		done <- uc.SyncSitesFromRemote(ctx)
	}()

	<-entered

	// Second attempt while the first run holds the guard
	err := uc.SyncSitesFromRemote(ctx)
	assert.NoError(t, err, "a concurrent attempt is rejected quietly, not queued")

	close(release)
	require.NoError(t, <-done)

	m.remoteRepo.AssertNumberOfCalls(t, "FetchAll", 1)
}

// ============================================================================
// PerformFullSync Tests
// ============================================================================

func TestPerformFullSync_NoUser_Noop(t *testing.T) {
	uc, m := newSyncUseCase()

	err := uc.PerformFullSync(context.Background(), "")

	assert.NoError(t, err)
	m.remoteRepo.AssertNotCalled(t, "Ping", mock.Anything)
	m.remoteRepo.AssertNotCalled(t, "FetchAll", mock.Anything)
}

func TestPerformFullSync_Offline_Noop(t *testing.T) {
	uc, m := newSyncUseCase()

	m.remoteRepo.On("Ping", mock.Anything).Return(false)

	err := uc.PerformFullSync(context.Background(), "user-1")

	assert.NoError(t, err)
	m.remoteRepo.AssertNotCalled(t, "FetchAll", mock.Anything)
}

func TestPerformFullSync_PullsAndPushesUserSites(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	visitedAt := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

	m.remoteRepo.On("Ping", mock.Anything).Return(true)
	m.remoteRepo.On("FetchAll", mock.Anything).Return([]*domain.RemoteSiteDocument{}, nil)
	m.siteRepo.On("Deduplicate", mock.Anything).Return(int64(0), nil)
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Return(nil)

	m.remoteRepo.On("FetchUserFavorites", mock.Anything, "user-1").Return([]*domain.RemoteFavorite{
		{SiteID: "7"},
		{SiteID: ""},
	}, nil)
	m.remoteRepo.On("FetchUserVisited", mock.Anything, "user-1").Return([]*domain.RemoteVisit{
		{SiteID: "9", VisitedAt: visitedAt, Notes: "poya day"},
	}, nil)

	m.siteRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Site{ID: 7}, nil)
	m.siteRepo.On("GetByID", mock.Anything, int64(9)).Return(&domain.Site{ID: 9}, nil)

	var bulkFavs []*domain.FavoriteSite
	m.userSiteRepo.On("BulkAddFavorites", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		bulkFavs = args.Get(1).([]*domain.FavoriteSite)
	}).Return(nil)

	var bulkVisits []*domain.VisitedSite
	m.userSiteRepo.On("BulkAddVisited", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		bulkVisits = args.Get(1).([]*domain.VisitedSite)
	}).Return(nil)

	localFavs := []*domain.FavoriteSite{{UserID: "user-1", SiteID: 7}}
	localVisits := []*domain.VisitedSite{{UserID: "user-1", SiteID: 9, VisitedAt: visitedAt}}
	m.userSiteRepo.On("GetFavorites", mock.Anything, "user-1").Return(localFavs, nil)
	m.userSiteRepo.On("GetVisited", mock.Anything, "user-1").Return(localVisits, nil)
	m.remoteRepo.On("PushUserFavorites", mock.Anything, "user-1", localFavs).Return(nil)
	m.remoteRepo.On("PushUserVisited", mock.Anything, "user-1", localVisits).Return(nil)

	err := uc.PerformFullSync(ctx, "user-1")

	require.NoError(t, err)
	require.Len(t, bulkFavs, 1, "remote entries without a usable site id are dropped")
	assert.Equal(t, int64(7), bulkFavs[0].SiteID)
	require.Len(t, bulkVisits, 1)
	assert.Equal(t, int64(9), bulkVisits[0].SiteID)
	assert.Equal(t, "poya day", bulkVisits[0].Notes)
	m.remoteRepo.AssertCalled(t, "PushUserFavorites", mock.Anything, "user-1", localFavs)
}

func TestPerformFullSync_SkipsEntriesForUncachedSites(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	m.remoteRepo.On("Ping", mock.Anything).Return(true)
	m.remoteRepo.On("FetchAll", mock.Anything).Return([]*domain.RemoteSiteDocument{}, nil)
	m.siteRepo.On("Deduplicate", mock.Anything).Return(int64(0), nil)
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Return(nil)

	// Site 7 is cached locally, 404 is not (deleted remotely, or its
	// document failed earlier in the same cycle)
	m.remoteRepo.On("FetchUserFavorites", mock.Anything, "user-1").Return([]*domain.RemoteFavorite{
		{SiteID: "7"},
		{SiteID: "404"},
	}, nil)
	m.remoteRepo.On("FetchUserVisited", mock.Anything, "user-1").Return([]*domain.RemoteVisit{
		{SiteID: "404"},
	}, nil)
	m.siteRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Site{ID: 7}, nil)
	m.siteRepo.On("GetByID", mock.Anything, int64(404)).Return(nil, nil)

	var bulkFavs []*domain.FavoriteSite
	m.userSiteRepo.On("BulkAddFavorites", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		bulkFavs = args.Get(1).([]*domain.FavoriteSite)
	}).Return(nil)

	m.userSiteRepo.On("GetFavorites", mock.Anything, "user-1").Return([]*domain.FavoriteSite{}, nil)
	m.userSiteRepo.On("GetVisited", mock.Anything, "user-1").Return([]*domain.VisitedSite{}, nil)
	m.remoteRepo.On("PushUserFavorites", mock.Anything, "user-1", mock.Anything).Return(nil)
	m.remoteRepo.On("PushUserVisited", mock.Anything, "user-1", mock.Anything).Return(nil)

	err := uc.PerformFullSync(ctx, "user-1")

	require.NoError(t, err)
	require.Len(t, bulkFavs, 1, "entry for a site missing locally must not reach the bulk insert")
	assert.Equal(t, int64(7), bulkFavs[0].SiteID)
	m.userSiteRepo.AssertNotCalled(t, "BulkAddVisited", mock.Anything, mock.Anything)
}

func TestPerformFullSync_PullFailureIsBestEffort(t *testing.T) {
	uc, m := newSyncUseCase()
	ctx := context.Background()

	m.remoteRepo.On("Ping", mock.Anything).Return(true)
	m.remoteRepo.On("FetchAll", mock.Anything).Return([]*domain.RemoteSiteDocument{}, nil)
	m.siteRepo.On("Deduplicate", mock.Anything).Return(int64(0), nil)
	m.appStateRepo.On("SetSyncState", mock.Anything, mock.Anything).Return(nil)

	m.remoteRepo.On("FetchUserFavorites", mock.Anything, "user-1").Return(nil, errors.New("403"))
	m.remoteRepo.On("FetchUserVisited", mock.Anything, "user-1").Return(nil, errors.New("403"))
	m.userSiteRepo.On("GetFavorites", mock.Anything, "user-1").Return([]*domain.FavoriteSite{}, nil)
	m.userSiteRepo.On("GetVisited", mock.Anything, "user-1").Return([]*domain.VisitedSite{}, nil)
	m.remoteRepo.On("PushUserFavorites", mock.Anything, "user-1", mock.Anything).Return(nil)
	m.remoteRepo.On("PushUserVisited", mock.Anything, "user-1", mock.Anything).Return(nil)

	err := uc.PerformFullSync(ctx, "user-1")

	assert.NoError(t, err, "user list failures must not fail the whole sync")
}

// ============================================================================
// Status Tests
// ============================================================================

func TestStatus_ReturnsLastRecordedState(t *testing.T) {
	uc, m := newSyncUseCase()

	recorded := &domain.SyncState{RunID: "run-1", SitesSynced: 42, Success: true}
	m.appStateRepo.On("GetSyncState", mock.Anything).Return(recorded, nil)

	state, inProgress := uc.Status(context.Background())

	assert.False(t, inProgress)
	require.NotNil(t, state)
	assert.Equal(t, "run-1", state.RunID)
	assert.Equal(t, 42, state.SitesSynced)
}
