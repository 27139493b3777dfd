package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/domain/repository"
	"github.com/heritage-sites-service/internal/pkg/errors"
)

type userSiteRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserSiteRepository(db *DB) repository.UserSiteRepository {
	return &userSiteRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *userSiteRepository) AddFavorite(ctx context.Context, userID string, siteID int64) error {
	query := `
		INSERT INTO favorite_sites (user_id, site_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, site_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, userID, siteID); err != nil {
		r.logger.Error("Failed to add favorite",
			zap.String("user_id", userID),
			zap.Int64("site_id", siteID),
			zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

func (r *userSiteRepository) RemoveFavorite(ctx context.Context, userID string, siteID int64) error {
	query := `DELETE FROM favorite_sites WHERE user_id = $1 AND site_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, siteID); err != nil {
		r.logger.Error("Failed to remove favorite",
			zap.String("user_id", userID),
			zap.Int64("site_id", siteID),
			zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

func (r *userSiteRepository) GetFavorites(ctx context.Context, userID string) ([]*domain.FavoriteSite, error) {
	query := `
		SELECT user_id, site_id, created_at
		FROM favorite_sites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var favorites []*domain.FavoriteSite
	if err := r.db.SelectContext(ctx, &favorites, query, userID); err != nil {
		r.logger.Error("Failed to get favorites", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return favorites, nil
}

func (r *userSiteRepository) IsFavorited(ctx context.Context, userID string, siteID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favorite_sites WHERE user_id = $1 AND site_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, siteID); err != nil {
		r.logger.Error("Failed to check favorite", zap.String("user_id", userID), zap.Error(err))
		return false, errors.ErrDatabaseError
	}

	return exists, nil
}

func (r *userSiteRepository) AddVisited(ctx context.Context, visit *domain.VisitedSite) error {
	query := `
		INSERT INTO visited_sites (user_id, site_id, notes)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, site_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, visit.UserID, visit.SiteID, visit.Notes); err != nil {
		r.logger.Error("Failed to add visited",
			zap.String("user_id", visit.UserID),
			zap.Int64("site_id", visit.SiteID),
			zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

func (r *userSiteRepository) RemoveVisited(ctx context.Context, userID string, siteID int64) error {
	query := `DELETE FROM visited_sites WHERE user_id = $1 AND site_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, siteID); err != nil {
		r.logger.Error("Failed to remove visited",
			zap.String("user_id", userID),
			zap.Int64("site_id", siteID),
			zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

func (r *userSiteRepository) GetVisited(ctx context.Context, userID string) ([]*domain.VisitedSite, error) {
	query := `
		SELECT user_id, site_id, visited_at, notes
		FROM visited_sites
		WHERE user_id = $1
		ORDER BY visited_at DESC
	`

	var visits []*domain.VisitedSite
	if err := r.db.SelectContext(ctx, &visits, query, userID); err != nil {
		r.logger.Error("Failed to get visited", zap.String("user_id", userID), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return visits, nil
}

func (r *userSiteRepository) IsVisited(ctx context.Context, userID string, siteID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM visited_sites WHERE user_id = $1 AND site_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, siteID); err != nil {
		r.logger.Error("Failed to check visited", zap.String("user_id", userID), zap.Error(err))
		return false, errors.ErrDatabaseError
	}

	return exists, nil
}

// BulkAddFavorites применяет пачку одной транзакцией:
// сбой на любой строке откатывает всю пачку.
func (r *userSiteRepository) BulkAddFavorites(ctx context.Context, favorites []*domain.FavoriteSite) error {
	if len(favorites) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin bulk favorites transaction", zap.Error(err))
		return errors.ErrDatabaseError
	}
	defer tx.Rollback()

	query := `
		INSERT INTO favorite_sites (user_id, site_id, created_at)
		VALUES ($1, $2, COALESCE($3, NOW()))
		ON CONFLICT (user_id, site_id) DO NOTHING
	`

	for _, f := range favorites {
		createdAt := optTime(f.CreatedAt)
		if _, err := tx.ExecContext(ctx, query, f.UserID, f.SiteID, createdAt); err != nil {
			r.logger.Error("Failed to bulk add favorite",
				zap.String("user_id", f.UserID),
				zap.Int64("site_id", f.SiteID),
				zap.Error(err))
			return errors.ErrDatabaseError
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit bulk favorites", zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

// BulkAddVisited применяет пачку одной транзакцией, всё или ничего.
func (r *userSiteRepository) BulkAddVisited(ctx context.Context, visits []*domain.VisitedSite) error {
	if len(visits) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin bulk visited transaction", zap.Error(err))
		return errors.ErrDatabaseError
	}
	defer tx.Rollback()

	query := `
		INSERT INTO visited_sites (user_id, site_id, visited_at, notes)
		VALUES ($1, $2, COALESCE($3, NOW()), $4)
		ON CONFLICT (user_id, site_id) DO NOTHING
	`

	for _, v := range visits {
		visitedAt := optTime(v.VisitedAt)
		if _, err := tx.ExecContext(ctx, query, v.UserID, v.SiteID, visitedAt, v.Notes); err != nil {
			r.logger.Error("Failed to bulk add visited",
				zap.String("user_id", v.UserID),
				zap.Int64("site_id", v.SiteID),
				zap.Error(err))
			return errors.ErrDatabaseError
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit bulk visited", zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}
