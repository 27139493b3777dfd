package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/domain/repository"
	"github.com/heritage-sites-service/internal/pkg/errors"
	"github.com/heritage-sites-service/internal/pkg/utils"
	"github.com/heritage-sites-service/internal/usecase/dto"
)

const defaultSearchLimit = 50

// SiteUseCase - чтение, поиск и админ-CRUD над локальным кешем сайтов,
// плюс операции избранного и посещений.
type SiteUseCase struct {
	siteRepo     repository.SiteRepository
	userSiteRepo repository.UserSiteRepository
	streamRepo   repository.StreamRepository
	logger       *zap.Logger
}

func NewSiteUseCase(
	siteRepo repository.SiteRepository,
	userSiteRepo repository.UserSiteRepository,
	streamRepo repository.StreamRepository,
	logger *zap.Logger,
) *SiteUseCase {
	return &SiteUseCase{
		siteRepo:     siteRepo,
		userSiteRepo: userSiteRepo,
		streamRepo:   streamRepo,
		logger:       logger,
	}
}

// Search - регистронезависимый поиск по имени, описанию и локации.
// Пустой запрос отклоняется: паттерн %% совпал бы со всем кешем.
func (uc *SiteUseCase) Search(ctx context.Context, req dto.SearchRequest) (*dto.SiteListResponse, error) {
	if req.Query == "" {
		return nil, errors.ErrEmptySearchQuery
	}
	if req.Limit == 0 {
		req.Limit = defaultSearchLimit
	}

	sites, err := uc.siteRepo.Search(ctx, req.Query, req.Limit)
	if err != nil {
		uc.logger.Error("Failed to search sites", zap.String("query", req.Query), zap.Error(err))
		return nil, err
	}

	return &dto.SiteListResponse{
		Sites: sites,
		Total: len(sites),
	}, nil
}

func (uc *SiteUseCase) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	if id <= 0 {
		return nil, errors.ErrInvalidSiteID
	}

	site, err := uc.siteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, errors.ErrSiteNotFound
	}

	return site, nil
}

// Create заводит сайт из админ-панели. Локальный ID детерминированно
// выводится из свежего remote_id, так что последующая синхронизация
// сведёт обе записи в одну строку.
func (uc *SiteUseCase) Create(ctx context.Context, req dto.CreateSiteRequest) (*domain.Site, error) {
	if req.Latitude != nil && req.Longitude != nil &&
		!utils.ValidateCoordinates(*req.Latitude, *req.Longitude) {
		return nil, errors.ErrInvalidCoordinates
	}

	remoteID := uuid.NewString()
	patch := &domain.SitePatch{
		ID:            domain.DeriveLocalID(remoteID),
		RemoteID:      remoteID,
		Name:          &req.Name,
		Description:   optString(req.Description),
		Location:      optString(req.Location),
		District:      optString(req.District),
		Category:      optString(req.Category),
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Coordinates:   req.Coordinates,
		VisitingHours: optString(req.VisitingHours),
		EntryFee:      optString(req.EntryFee),
		Rating:        req.Rating,
		ImageURL:      optString(req.ImageURL),
		Gallery:       req.Gallery,
	}

	if err := uc.siteRepo.Upsert(ctx, patch); err != nil {
		uc.logger.Error("Failed to create site", zap.Error(err))
		return nil, err
	}

	return uc.GetByID(ctx, patch.ID)
}

// Update частично обновляет сайт. Смена координат публикует событие
// на пересчёт nearby-дистанций; сбой публикации не валит обновление.
func (uc *SiteUseCase) Update(ctx context.Context, id int64, req dto.UpdateSiteRequest) (*domain.Site, error) {
	existing, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Latitude != nil && req.Longitude != nil &&
		!utils.ValidateCoordinates(*req.Latitude, *req.Longitude) {
		return nil, errors.ErrInvalidCoordinates
	}

	if err := uc.siteRepo.Upsert(ctx, req.ToPatch(id)); err != nil {
		uc.logger.Error("Failed to update site", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if req.HasCoordinates() && len(existing.Nearby) > 0 {
		event := domain.NearbyRecalcEvent{
			EventID: uuid.NewString(),
			SiteID:  id,
		}
		if err := uc.streamRepo.PublishToStream(ctx, domain.StreamNearbyRecalc, event); err != nil {
			uc.logger.Warn("Failed to publish nearby recalc event",
				zap.Int64("site_id", id),
				zap.Error(err))
		}
	}

	return uc.GetByID(ctx, id)
}

func (uc *SiteUseCase) Delete(ctx context.Context, id int64) error {
	if _, err := uc.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.siteRepo.Delete(ctx, id)
}

func (uc *SiteUseCase) AddFavorite(ctx context.Context, userID string, siteID int64) error {
	if _, err := uc.GetByID(ctx, siteID); err != nil {
		return err
	}
	return uc.userSiteRepo.AddFavorite(ctx, userID, siteID)
}

func (uc *SiteUseCase) RemoveFavorite(ctx context.Context, userID string, siteID int64) error {
	return uc.userSiteRepo.RemoveFavorite(ctx, userID, siteID)
}

func (uc *SiteUseCase) GetFavorites(ctx context.Context, userID string) ([]*domain.FavoriteSite, error) {
	return uc.userSiteRepo.GetFavorites(ctx, userID)
}

func (uc *SiteUseCase) IsFavorited(ctx context.Context, userID string, siteID int64) (bool, error) {
	return uc.userSiteRepo.IsFavorited(ctx, userID, siteID)
}

func (uc *SiteUseCase) AddVisited(ctx context.Context, userID string, siteID int64, notes string) error {
	if _, err := uc.GetByID(ctx, siteID); err != nil {
		return err
	}
	return uc.userSiteRepo.AddVisited(ctx, &domain.VisitedSite{
		UserID: userID,
		SiteID: siteID,
		Notes:  notes,
	})
}

func (uc *SiteUseCase) RemoveVisited(ctx context.Context, userID string, siteID int64) error {
	return uc.userSiteRepo.RemoveVisited(ctx, userID, siteID)
}

func (uc *SiteUseCase) GetVisited(ctx context.Context, userID string) ([]*domain.VisitedSite, error) {
	return uc.userSiteRepo.GetVisited(ctx, userID)
}

func (uc *SiteUseCase) IsVisited(ctx context.Context, userID string, siteID int64) (bool, error) {
	return uc.userSiteRepo.IsVisited(ctx, userID, siteID)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
