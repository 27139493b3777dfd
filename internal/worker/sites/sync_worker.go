package sites

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/worker"
)

// SiteSyncer - минимальный контракт движка синхронизации,
// который нужен фоновому воркеру.
type SiteSyncer interface {
	SyncSitesFromRemote(ctx context.Context) error
}

// SiteSyncWorker периодически подтягивает удалённую коллекцию сайтов
// в локальный кеш. Пересечение с ручным запуском синхронизации
// разруливает single-flight guard самого движка.
type SiteSyncWorker struct {
	*worker.BaseWorker
	syncer   SiteSyncer
	interval time.Duration
}

// NewSiteSyncWorker создает новый SiteSyncWorker
func NewSiteSyncWorker(syncer SiteSyncer, interval time.Duration, logger *zap.Logger) *SiteSyncWorker {
	return &SiteSyncWorker{
		BaseWorker: worker.NewBaseWorker("site-sync", "", logger),
		syncer:     syncer,
		interval:   interval,
	}
}

// Start запускает воркер
func (w *SiteSyncWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting SiteSyncWorker", zap.Duration("interval", w.interval))

	// Первый прогон сразу, не дожидаясь тика
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SiteSyncWorker) runOnce(ctx context.Context) {
	if err := w.syncer.SyncSitesFromRemote(ctx); err != nil {
		w.Logger().Error("Scheduled site sync failed", zap.Error(err))
	}
}
