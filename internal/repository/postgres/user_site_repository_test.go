package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/domain/repository"
	"github.com/heritage-sites-service/internal/repository/postgres/testhelpers"
)

// UserSiteRepositoryTestSuite tests all methods of UserSiteRepository
type UserSiteRepositoryTestSuite struct {
	suite.Suite
	testDB   *testhelpers.TestDB
	repo     repository.UserSiteRepository
	siteRepo repository.SiteRepository
	ctx      context.Context
}

// SetupSuite runs once before all tests in the suite
func (s *UserSiteRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())

	_ = testhelpers.ApplyMigrations(
		s.testDB.DB.DB,
		"../../../migrations",
	)

	s.repo = testhelpers.NewUserSiteRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.siteRepo = testhelpers.NewSiteRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

// TearDownSuite runs once after all tests in the suite
func (s *UserSiteRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

// SetupTest runs before each test
func (s *UserSiteRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	err := s.testDB.Cleanup(s.ctx)
	s.NoError(err, "Failed to cleanup test database")

	// User rows reference sites, seed a few
	for id, name := range map[int64]string{1: "Sigiriya", 2: "Dambulla", 3: "Kandy"} {
		n := name
		err := s.siteRepo.Upsert(s.ctx, &domain.SitePatch{ID: id, Name: &n})
		s.Require().NoError(err)
	}
}

// ============================================================================
// Favorites Tests
// ============================================================================

func (s *UserSiteRepositoryTestSuite) TestAddFavorite_Idempotent() {
	s.NoError(s.repo.AddFavorite(s.ctx, "user-1", 1))
	s.NoError(s.repo.AddFavorite(s.ctx, "user-1", 1))

	favorites, err := s.repo.GetFavorites(s.ctx, "user-1")
	s.NoError(err)
	s.Len(favorites, 1, "the (user, site) pair is unique")
}

func (s *UserSiteRepositoryTestSuite) TestRemoveFavorite() {
	s.NoError(s.repo.AddFavorite(s.ctx, "user-1", 1))
	s.NoError(s.repo.RemoveFavorite(s.ctx, "user-1", 1))

	favorited, err := s.repo.IsFavorited(s.ctx, "user-1", 1)
	s.NoError(err)
	s.False(favorited)
}

func (s *UserSiteRepositoryTestSuite) TestGetFavorites_PerUserIsolation() {
	s.NoError(s.repo.AddFavorite(s.ctx, "user-1", 1))
	s.NoError(s.repo.AddFavorite(s.ctx, "user-2", 2))

	favorites, err := s.repo.GetFavorites(s.ctx, "user-1")
	s.NoError(err)
	s.Require().Len(favorites, 1)
	s.Equal(int64(1), favorites[0].SiteID)
}

// ============================================================================
// Visited Tests
// ============================================================================

func (s *UserSiteRepositoryTestSuite) TestAddVisited_WithNotes() {
	s.NoError(s.repo.AddVisited(s.ctx, &domain.VisitedSite{
		UserID: "user-1",
		SiteID: 1,
		Notes:  "climbed at sunrise",
	}))

	visits, err := s.repo.GetVisited(s.ctx, "user-1")
	s.NoError(err)
	s.Require().Len(visits, 1)
	s.Equal("climbed at sunrise", visits[0].Notes)
	s.False(visits[0].VisitedAt.IsZero())
}

func (s *UserSiteRepositoryTestSuite) TestAddVisited_Idempotent() {
	visit := &domain.VisitedSite{UserID: "user-1", SiteID: 1}
	s.NoError(s.repo.AddVisited(s.ctx, visit))
	s.NoError(s.repo.AddVisited(s.ctx, visit))

	visits, err := s.repo.GetVisited(s.ctx, "user-1")
	s.NoError(err)
	s.Len(visits, 1)
}

// ============================================================================
// Bulk Tests
// ============================================================================

func (s *UserSiteRepositoryTestSuite) TestBulkAddFavorites_SingleTransaction() {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := s.repo.BulkAddFavorites(s.ctx, []*domain.FavoriteSite{
		{UserID: "user-1", SiteID: 1, CreatedAt: created},
		{UserID: "user-1", SiteID: 2},
	})
	s.NoError(err)

	favorites, err := s.repo.GetFavorites(s.ctx, "user-1")
	s.NoError(err)
	s.Len(favorites, 2)
}

func (s *UserSiteRepositoryTestSuite) TestBulkAddFavorites_RollbackOnFailure() {
	// Site 999 does not exist, the FK violation must roll back the batch
	err := s.repo.BulkAddFavorites(s.ctx, []*domain.FavoriteSite{
		{UserID: "user-1", SiteID: 1},
		{UserID: "user-1", SiteID: 999},
	})
	s.Error(err)

	favorites, err := s.repo.GetFavorites(s.ctx, "user-1")
	s.NoError(err)
	s.Empty(favorites, "a failed batch must not apply partially")
}

func (s *UserSiteRepositoryTestSuite) TestBulkAddVisited_PreservesRemoteTimestamps() {
	visitedAt := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	err := s.repo.BulkAddVisited(s.ctx, []*domain.VisitedSite{
		{UserID: "user-1", SiteID: 1, VisitedAt: visitedAt, Notes: "full moon festival"},
	})
	s.NoError(err)

	visits, err := s.repo.GetVisited(s.ctx, "user-1")
	s.NoError(err)
	s.Require().Len(visits, 1)
	s.WithinDuration(visitedAt, visits[0].VisitedAt, time.Second)
	s.Equal("full moon festival", visits[0].Notes)
}

func TestUserSiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserSiteRepositoryTestSuite))
}
