package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/domain/repository"
)

// SyncUseCase - движок синхронизации локального кеша с удалённой
// коллекцией сайтов. Один прогон за раз: повторная попытка на фоне
// идущего прогона отклоняется, не ставится в очередь.
type SyncUseCase struct {
	siteRepo     repository.SiteRepository
	userSiteRepo repository.UserSiteRepository
	remoteRepo   repository.RemoteSiteRepository
	appStateRepo repository.AppStateRepository
	logger       *zap.Logger

	mu             sync.Mutex
	syncInProgress bool
}

func NewSyncUseCase(
	siteRepo repository.SiteRepository,
	userSiteRepo repository.UserSiteRepository,
	remoteRepo repository.RemoteSiteRepository,
	appStateRepo repository.AppStateRepository,
	logger *zap.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		siteRepo:     siteRepo,
		userSiteRepo: userSiteRepo,
		remoteRepo:   remoteRepo,
		appStateRepo: appStateRepo,
		logger:       logger,
	}
}

// GetAllSitesWithSync - главная точка чтения для всех экранов.
// Онлайн: пытается подтянуть удалённую коллекцию, неудача не фатальна.
// Офлайн: удалённый шаг пропускается. В любом исходе возвращается
// содержимое локального кеша; даже при падении локального чтения
// вызывающий получает пустой список, а не ошибку.
func (uc *SyncUseCase) GetAllSitesWithSync(ctx context.Context) []*domain.Site {
	if uc.remoteRepo.Ping(ctx) {
		if err := uc.SyncSitesFromRemote(ctx); err != nil {
			uc.logger.Warn("Remote sync failed, serving cached sites", zap.Error(err))
		}
	} else {
		uc.logger.Debug("Remote store unreachable, skipping sync")
	}

	sites, err := uc.siteRepo.GetAll(ctx)
	if err != nil {
		uc.logger.Error("Local cache read failed, returning empty list", zap.Error(err))
		return []*domain.Site{}
	}
	if sites == nil {
		sites = []*domain.Site{}
	}

	return sites
}

// SyncSitesFromRemote выполняет один цикл pull-синхронизации сайтов.
// Повторный вызов на фоне идущего цикла отклоняется молча (с логом).
// Ошибка выборки коллекции прерывает цикл; ошибка обработки отдельного
// документа изолируется и не мешает остальным.
func (uc *SyncUseCase) SyncSitesFromRemote(ctx context.Context) error {
	if !uc.beginSync() {
		uc.logger.Info("Sync already in progress, skipping")
		return nil
	}
	defer uc.endSync()

	return uc.syncSites(ctx)
}

// PerformFullSync - полная двусторонняя синхронизация для
// авторизованного пользователя: pull сайтов, pull избранного и
// посещений в локальный кеш, затем push локальных списков обратно.
// No-op без пользователя и no-op (с логом) в офлайне.
func (uc *SyncUseCase) PerformFullSync(ctx context.Context, userID string) error {
	if userID == "" {
		uc.logger.Debug("No signed-in user, skipping full sync")
		return nil
	}

	if !uc.beginSync() {
		uc.logger.Info("Sync already in progress, skipping full sync",
			zap.String("user_id", userID))
		return nil
	}
	defer uc.endSync()

	if !uc.remoteRepo.Ping(ctx) {
		uc.logger.Info("Remote store unreachable, skipping full sync",
			zap.String("user_id", userID))
		return nil
	}

	if err := uc.syncSites(ctx); err != nil {
		return err
	}

	uc.pullUserSites(ctx, userID)
	uc.pushUserSites(ctx, userID)

	uc.logger.Info("Full sync completed", zap.String("user_id", userID))
	return nil
}

// Status возвращает снимок последней синхронизации и признак
// идущего прогона.
func (uc *SyncUseCase) Status(ctx context.Context) (*domain.SyncState, bool) {
	uc.mu.Lock()
	inProgress := uc.syncInProgress
	uc.mu.Unlock()

	state, err := uc.appStateRepo.GetSyncState(ctx)
	if err != nil {
		uc.logger.Warn("Failed to read sync state", zap.Error(err))
	}

	return state, inProgress
}

// syncSites - тело цикла pull-синхронизации, без single-flight guard.
func (uc *SyncUseCase) syncSites(ctx context.Context) error {
	runID := uuid.NewString()
	started := time.Now()

	docs, err := uc.remoteRepo.FetchAll(ctx)
	if err != nil {
		uc.recordSyncState(ctx, &domain.SyncState{
			RunID:      runID,
			LastSyncAt: time.Now().UTC(),
			Success:    false,
			Error:      err.Error(),
		})
		return fmt.Errorf("failed to fetch remote sites: %w", err)
	}

	synced := 0
	failed := 0
	for _, doc := range docs {
		if err := uc.syncDocument(ctx, doc); err != nil {
			failed++
			uc.logger.Warn("Failed to sync site document",
				zap.String("remote_id", doc.ID),
				zap.Error(err))
			continue
		}
		synced++
	}

	removed, err := uc.siteRepo.Deduplicate(ctx)
	if err != nil {
		uc.logger.Warn("Dedup pass failed", zap.Error(err))
	}

	uc.recordSyncState(ctx, &domain.SyncState{
		RunID:        runID,
		LastSyncAt:   time.Now().UTC(),
		SitesSynced:  synced,
		SitesFailed:  failed,
		DedupRemoved: removed,
		Success:      true,
	})

	uc.logger.Info("Sites synced from remote store",
		zap.String("run_id", runID),
		zap.Int("synced", synced),
		zap.Int("failed", failed),
		zap.Int64("dedup_removed", removed),
		zap.Duration("took", time.Since(started)))

	return nil
}

// syncDocument нормализует и апсертит один удалённый документ.
func (uc *SyncUseCase) syncDocument(ctx context.Context, doc *domain.RemoteSiteDocument) error {
	patch := domain.NormalizeRemoteSite(doc)
	if patch == nil {
		return fmt.Errorf("document has no usable id")
	}

	// Два разных удалённых ID, хешированных в один локальный,
	// молча слились бы в одну строку - фиксируем это в логе.
	existing, err := uc.siteRepo.GetByID(ctx, patch.ID)
	if err == nil && existing != nil &&
		existing.RemoteID != "" && patch.RemoteID != existing.RemoteID {
		uc.logger.Warn("Local id collision between remote documents",
			zap.Int64("local_id", patch.ID),
			zap.String("existing_remote_id", existing.RemoteID),
			zap.String("incoming_remote_id", patch.RemoteID))
	}

	return uc.siteRepo.Upsert(ctx, patch)
}

// pullUserSites подтягивает избранное и посещения пользователя из
// удалённого хранилища в локальный кеш. Каждый шаг best-effort.
func (uc *SyncUseCase) pullUserSites(ctx context.Context, userID string) {
	remoteFavs, err := uc.remoteRepo.FetchUserFavorites(ctx, userID)
	if err != nil {
		uc.logger.Warn("Failed to fetch remote favorites", zap.String("user_id", userID), zap.Error(err))
	} else if len(remoteFavs) > 0 {
		favorites := make([]*domain.FavoriteSite, 0, len(remoteFavs))
		for _, rf := range remoteFavs {
			siteID := domain.DeriveLocalID(rf.SiteID)
			if siteID == 0 || !uc.siteCached(ctx, siteID) {
				continue
			}
			favorites = append(favorites, &domain.FavoriteSite{
				UserID:    userID,
				SiteID:    siteID,
				CreatedAt: rf.CreatedAt,
			})
		}
		if err := uc.userSiteRepo.BulkAddFavorites(ctx, favorites); err != nil {
			uc.logger.Warn("Failed to store remote favorites", zap.String("user_id", userID), zap.Error(err))
		}
	}

	remoteVisits, err := uc.remoteRepo.FetchUserVisited(ctx, userID)
	if err != nil {
		uc.logger.Warn("Failed to fetch remote visits", zap.String("user_id", userID), zap.Error(err))
	} else if len(remoteVisits) > 0 {
		visits := make([]*domain.VisitedSite, 0, len(remoteVisits))
		for _, rv := range remoteVisits {
			siteID := domain.DeriveLocalID(rv.SiteID)
			if siteID == 0 || !uc.siteCached(ctx, siteID) {
				continue
			}
			visits = append(visits, &domain.VisitedSite{
				UserID:    userID,
				SiteID:    siteID,
				VisitedAt: rv.VisitedAt,
				Notes:     rv.Notes,
			})
		}
		if err := uc.userSiteRepo.BulkAddVisited(ctx, visits); err != nil {
			uc.logger.Warn("Failed to store remote visits", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// siteCached сообщает, есть ли сайт в локальном кеше. Удалённая
// запись, ссылающаяся на отсутствующий сайт, пропускается - иначе
// одна такая запись откатила бы весь bulk-insert.
func (uc *SyncUseCase) siteCached(ctx context.Context, siteID int64) bool {
	site, err := uc.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		uc.logger.Warn("Failed to check cached site", zap.Int64("site_id", siteID), zap.Error(err))
		return false
	}
	if site == nil {
		uc.logger.Debug("Skipping remote entry for uncached site", zap.Int64("site_id", siteID))
		return false
	}
	return true
}

// pushUserSites выгружает локальные списки пользователя обратно
// в удалённое хранилище.
func (uc *SyncUseCase) pushUserSites(ctx context.Context, userID string) {
	favorites, err := uc.userSiteRepo.GetFavorites(ctx, userID)
	if err != nil {
		uc.logger.Warn("Failed to read local favorites", zap.String("user_id", userID), zap.Error(err))
	} else if err := uc.remoteRepo.PushUserFavorites(ctx, userID, favorites); err != nil {
		uc.logger.Warn("Failed to push favorites", zap.String("user_id", userID), zap.Error(err))
	}

	visits, err := uc.userSiteRepo.GetVisited(ctx, userID)
	if err != nil {
		uc.logger.Warn("Failed to read local visits", zap.String("user_id", userID), zap.Error(err))
	} else if err := uc.remoteRepo.PushUserVisited(ctx, userID, visits); err != nil {
		uc.logger.Warn("Failed to push visits", zap.String("user_id", userID), zap.Error(err))
	}
}

func (uc *SyncUseCase) recordSyncState(ctx context.Context, state *domain.SyncState) {
	if err := uc.appStateRepo.SetSyncState(ctx, state); err != nil {
		uc.logger.Warn("Failed to record sync state", zap.Error(err))
	}
}

func (uc *SyncUseCase) beginSync() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.syncInProgress {
		return false
	}
	uc.syncInProgress = true
	return true
}

func (uc *SyncUseCase) endSync() {
	uc.mu.Lock()
	uc.syncInProgress = false
	uc.mu.Unlock()
}
