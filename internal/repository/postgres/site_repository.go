package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/domain/repository"
	"github.com/heritage-sites-service/internal/pkg/errors"
)

type siteRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSiteRepository(db *DB) repository.SiteRepository {
	return &siteRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

const siteColumns = `
	id, remote_id, name, description, location, district, category,
	latitude, longitude, visiting_hours, entry_fee, distance, rating,
	image_url, gallery, nearby, created_at, updated_at
`

func (r *siteRepository) GetAll(ctx context.Context) ([]*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to get all sites", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	var sites []*domain.Site
	for rows.Next() {
		site, err := r.scanSite(rows)
		if err != nil {
			r.logger.Error("Failed to scan site", zap.Error(err))
			continue
		}
		sites = append(sites, site)
	}

	return sites, nil
}

func (r *siteRepository) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to get site by ID", zap.Int64("id", id), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	site, err := r.scanSite(rows)
	if err != nil {
		r.logger.Error("Failed to scan site", zap.Int64("id", id), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return site, nil
}

func (r *siteRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Site, error) {
	sqlQuery := `
		SELECT ` + siteColumns + `
		FROM sites
		WHERE name ILIKE '%' || $1 || '%'
		   OR description ILIKE '%' || $1 || '%'
		   OR location ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, sqlQuery, query, limit)
	if err != nil {
		r.logger.Error("Failed to search sites", zap.String("query", query), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	var sites []*domain.Site
	for rows.Next() {
		site, err := r.scanSite(rows)
		if err != nil {
			continue
		}
		sites = append(sites, site)
	}

	return sites, nil
}

// Upsert вставляет строку либо частично обновляет существующую.
// nil-поля патча оставляют сохранённые значения нетронутыми
// (COALESCE на стороне базы); при вставке пропущенные поля
// получают нулевые значения своего типа.
func (r *siteRepository) Upsert(ctx context.Context, patch *domain.SitePatch) error {
	if patch == nil || patch.ID <= 0 {
		return errors.ErrInvalidSiteID
	}

	patch.FlattenCoordinates()

	var galleryArg interface{}
	if patch.Gallery != nil {
		galleryArg = pq.Array(patch.Gallery)
	}

	var nearbyArg interface{}
	if patch.Nearby != nil {
		data, err := json.Marshal(patch.Nearby)
		if err != nil {
			r.logger.Error("Failed to marshal nearby refs", zap.Int64("id", patch.ID), zap.Error(err))
			return errors.ErrInvalidRequest
		}
		nearbyArg = data
	}

	query := `
		INSERT INTO sites (
			id, remote_id, name, description, location, district, category,
			latitude, longitude, visiting_hours, entry_fee, distance, rating,
			image_url, gallery, nearby
		) VALUES (
			$1, $2,
			COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''),
			COALESCE($6, ''), COALESCE($7, ''),
			COALESCE($8::double precision, 0), COALESCE($9::double precision, 0),
			COALESCE($10, ''), COALESCE($11, ''), COALESCE($12, ''),
			COALESCE($13::double precision, 0),
			COALESCE($14, ''),
			COALESCE($15, '{}'::text[]),
			COALESCE($16, '[]'::jsonb)
		)
		ON CONFLICT (id) DO UPDATE SET
			remote_id      = COALESCE(NULLIF(EXCLUDED.remote_id, ''), sites.remote_id),
			name           = COALESCE($3, sites.name),
			description    = COALESCE($4, sites.description),
			location       = COALESCE($5, sites.location),
			district       = COALESCE($6, sites.district),
			category       = COALESCE($7, sites.category),
			latitude       = COALESCE($8, sites.latitude),
			longitude      = COALESCE($9, sites.longitude),
			visiting_hours = COALESCE($10, sites.visiting_hours),
			entry_fee      = COALESCE($11, sites.entry_fee),
			distance       = COALESCE($12, sites.distance),
			rating         = COALESCE($13, sites.rating),
			image_url      = COALESCE($14, sites.image_url),
			gallery        = COALESCE($15, sites.gallery),
			nearby         = COALESCE($16, sites.nearby),
			updated_at     = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		patch.ID, patch.RemoteID,
		patch.Name, patch.Description, patch.Location, patch.District, patch.Category,
		patch.Latitude, patch.Longitude,
		patch.VisitingHours, patch.EntryFee, patch.Distance, patch.Rating,
		patch.ImageURL, galleryArg, nearbyArg,
	)
	if err != nil {
		r.logger.Error("Failed to upsert site", zap.Int64("id", patch.ID), zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

// Delete удаляет сайт и связанные favorite/visited строки одной
// транзакцией: либо все строки удалены, либо ни одной.
func (r *siteRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin delete transaction", zap.Int64("id", id), zap.Error(err))
		return errors.ErrDatabaseError
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM favorite_sites WHERE site_id = $1`,
		`DELETE FROM visited_sites WHERE site_id = $1`,
		`DELETE FROM sites WHERE id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			r.logger.Error("Failed to delete site", zap.Int64("id", id), zap.Error(err))
			return errors.ErrDatabaseError
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit delete transaction", zap.Int64("id", id), zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

// Deduplicate схлопывает строки, указывающие на один и тот же
// удалённый документ, до одной - остаётся последняя обновлённая.
// Связанные favorite/visited строки удаляемых дублей зачищаются
// в той же транзакции.
func (r *siteRepository) Deduplicate(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin dedup transaction", zap.Error(err))
		return 0, errors.ErrDatabaseError
	}
	defer tx.Rollback()

	const rankedDuplicates = `
		WITH ranked AS (
			SELECT id,
			       ROW_NUMBER() OVER (
			           PARTITION BY remote_id
			           ORDER BY updated_at DESC, id DESC
			       ) AS rn
			FROM sites
			WHERE remote_id <> ''
		)
		SELECT id FROM ranked WHERE rn > 1
	`

	cleanupStatements := []string{
		`DELETE FROM favorite_sites WHERE site_id IN (` + rankedDuplicates + `)`,
		`DELETE FROM visited_sites WHERE site_id IN (` + rankedDuplicates + `)`,
	}
	for _, stmt := range cleanupStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			r.logger.Error("Failed to clean up duplicate references", zap.Error(err))
			return 0, errors.ErrDatabaseError
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM sites WHERE id IN (`+rankedDuplicates+`)`)
	if err != nil {
		r.logger.Error("Failed to delete duplicate sites", zap.Error(err))
		return 0, errors.ErrDatabaseError
	}

	removed, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit dedup transaction", zap.Error(err))
		return 0, errors.ErrDatabaseError
	}

	if removed > 0 {
		r.logger.Info("Duplicate sites collapsed", zap.Int64("removed", removed))
	}

	return removed, nil
}

func (r *siteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sites`); err != nil {
		r.logger.Error("Failed to count sites", zap.Error(err))
		return 0, errors.ErrDatabaseError
	}
	return count, nil
}

func (r *siteRepository) scanSite(rows *sql.Rows) (*domain.Site, error) {
	var site domain.Site
	var gallery pq.StringArray
	var nearbyJSON []byte

	err := rows.Scan(
		&site.ID, &site.RemoteID, &site.Name, &site.Description,
		&site.Location, &site.District, &site.Category,
		&site.Latitude, &site.Longitude,
		&site.VisitingHours, &site.EntryFee, &site.Distance, &site.Rating,
		&site.ImageURL, &gallery, &nearbyJSON,
		&site.CreatedAt, &site.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	site.Gallery = []string(gallery)

	if len(nearbyJSON) > 0 {
		var nearby []domain.NearbyRef
		if err := json.Unmarshal(nearbyJSON, &nearby); err != nil {
			r.logger.Warn("Failed to unmarshal nearby refs", zap.Int64("id", site.ID), zap.Error(err))
		} else {
			site.Nearby = nearby
		}
	}

	return &site, nil
}
