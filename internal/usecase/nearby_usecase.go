package usecase

import (
	"context"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/domain/repository"
	"github.com/heritage-sites-service/internal/pkg/errors"
	"github.com/heritage-sites-service/internal/pkg/utils"
)

// SiteLookup - внешняя функция поиска сайта по строковому ID ссылки.
// Инъекция оставляет логику пересчёта независимой от бэкенда поиска.
type SiteLookup func(ctx context.Context, refID string) (*domain.Site, error)

// SiteSearch - внешняя функция текстового поиска кандидатов
// для прикрепления в nearby-список.
type SiteSearch func(ctx context.Context, query string) ([]*domain.Site, error)

// NearbyUseCase пересчитывает денормализованные nearby-дистанции
// сайта и редактирует его nearby-список.
type NearbyUseCase struct {
	siteRepo   repository.SiteRepository
	streamRepo repository.StreamRepository
	logger     *zap.Logger
}

func NewNearbyUseCase(
	siteRepo repository.SiteRepository,
	streamRepo repository.StreamRepository,
	logger *zap.Logger,
) *NearbyUseCase {
	return &NearbyUseCase{
		siteRepo:   siteRepo,
		streamRepo: streamRepo,
		logger:     logger,
	}
}

// RecalculateDistances пересчитывает DistanceKm каждой ссылки.
// Сбой на отдельной ссылке (промах поиска, нет координат, нечисловая
// дистанция) оставляет её прежнее значение нетронутым. Порядок списка
// сохраняется, округление до двух знаков.
func (uc *NearbyUseCase) RecalculateDistances(
	ctx context.Context,
	origin domain.Point,
	refs []domain.NearbyRef,
	lookup SiteLookup,
) []domain.NearbyRef {
	result := make([]domain.NearbyRef, len(refs))
	copy(result, refs)

	for i := range result {
		site, err := lookup(ctx, result[i].ID)
		if err != nil || site == nil {
			uc.logger.Debug("Nearby ref lookup miss, keeping previous distance",
				zap.String("ref_id", result[i].ID))
			continue
		}

		coords, ok := site.Coords()
		if !ok {
			continue
		}

		km := utils.KmBetween(origin, coords)
		if math.IsNaN(km) || math.IsInf(km, 0) {
			continue
		}

		rounded := utils.RoundKm(km)
		result[i].DistanceKm = &rounded
	}

	return result
}

// RecalculateForSite перечитывает сайт, пересчитывает его nearby-список
// против локального кеша и сохраняет результат.
func (uc *NearbyUseCase) RecalculateForSite(ctx context.Context, siteID int64) (*domain.Site, error) {
	site, err := uc.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, errors.ErrSiteNotFound
	}

	origin, ok := site.Coords()
	if !ok {
		uc.logger.Warn("Site has no coordinates, nothing to recalculate",
			zap.Int64("site_id", siteID))
		return site, nil
	}

	if len(site.Nearby) == 0 {
		return site, nil
	}

	site.Nearby = uc.RecalculateDistances(ctx, origin, site.Nearby, uc.lookupByRefID)

	if err := uc.persistNearby(ctx, siteID, site.Nearby); err != nil {
		return nil, err
	}

	return site, nil
}

// SearchCandidates ищет сайты для прикрепления через внешнюю
// функцию поиска.
func (uc *NearbyUseCase) SearchCandidates(ctx context.Context, query string, search SiteSearch) ([]*domain.Site, error) {
	if query == "" {
		return nil, errors.ErrEmptySearchQuery
	}
	return search(ctx, query)
}

// AddRef добавляет ссылку в конец nearby-списка; дистанция считается
// сразу, если обе стороны имеют координаты. Дубликат по ID - no-op.
func (uc *NearbyUseCase) AddRef(ctx context.Context, siteID int64, ref domain.NearbyRef) (*domain.Site, error) {
	site, err := uc.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, errors.ErrSiteNotFound
	}

	for _, existing := range site.Nearby {
		if existing.ID == ref.ID {
			return site, nil
		}
	}

	if origin, ok := site.Coords(); ok {
		if target, err := uc.lookupByRefID(ctx, ref.ID); err == nil && target != nil {
			if coords, tok := target.Coords(); tok {
				km := utils.KmBetween(origin, coords)
				if !math.IsNaN(km) && !math.IsInf(km, 0) {
					rounded := utils.RoundKm(km)
					ref.DistanceKm = &rounded
				}
			}
		}
	}

	site.Nearby = append(site.Nearby, ref)

	if err := uc.persistNearby(ctx, siteID, site.Nearby); err != nil {
		return nil, err
	}
	return site, nil
}

// RemoveRef удаляет ссылку из nearby-списка; отсутствующая - no-op.
func (uc *NearbyUseCase) RemoveRef(ctx context.Context, siteID int64, refID string) (*domain.Site, error) {
	site, err := uc.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, errors.ErrSiteNotFound
	}

	filtered := site.Nearby[:0]
	for _, ref := range site.Nearby {
		if ref.ID != refID {
			filtered = append(filtered, ref)
		}
	}
	if len(filtered) == len(site.Nearby) {
		return site, nil
	}
	site.Nearby = filtered

	if err := uc.persistNearby(ctx, siteID, site.Nearby); err != nil {
		return nil, err
	}
	return site, nil
}

// MoveRef переставляет ссылку вверх или вниз на одну позицию.
// Порядок nearby-списка задаётся только этими операциями.
func (uc *NearbyUseCase) MoveRef(ctx context.Context, siteID int64, refID, direction string) (*domain.Site, error) {
	site, err := uc.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, errors.ErrSiteNotFound
	}

	idx := -1
	for i, ref := range site.Nearby {
		if ref.ID == refID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errors.ErrInvalidRequest
	}

	swap := idx
	switch direction {
	case "up":
		swap = idx - 1
	case "down":
		swap = idx + 1
	default:
		return nil, errors.ErrInvalidRequest
	}
	if swap < 0 || swap >= len(site.Nearby) {
		return site, nil
	}

	site.Nearby[idx], site.Nearby[swap] = site.Nearby[swap], site.Nearby[idx]

	if err := uc.persistNearby(ctx, siteID, site.Nearby); err != nil {
		return nil, err
	}
	return site, nil
}

// RequestRecalc публикует событие на асинхронный пересчёт
// nearby-дистанций сайта.
func (uc *NearbyUseCase) RequestRecalc(ctx context.Context, siteID int64) error {
	event := domain.NearbyRecalcEvent{
		EventID: uuid.NewString(),
		SiteID:  siteID,
	}
	return uc.streamRepo.PublishToStream(ctx, domain.StreamNearbyRecalc, event)
}

// lookupByRefID резолвит строковый ID ссылки в строку локального кеша
// тем же выводом ID, что и синхронизация.
func (uc *NearbyUseCase) lookupByRefID(ctx context.Context, refID string) (*domain.Site, error) {
	localID := domain.DeriveLocalID(refID)
	if localID == 0 {
		return nil, nil
	}
	return uc.siteRepo.GetByID(ctx, localID)
}

func (uc *NearbyUseCase) persistNearby(ctx context.Context, siteID int64, nearby []domain.NearbyRef) error {
	if nearby == nil {
		nearby = []domain.NearbyRef{}
	}
	patch := &domain.SitePatch{
		ID:     siteID,
		Nearby: nearby,
	}
	if err := uc.siteRepo.Upsert(ctx, patch); err != nil {
		uc.logger.Error("Failed to persist nearby refs", zap.Int64("site_id", siteID), zap.Error(err))
		return err
	}
	return nil
}
