package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/domain/repository"
	"github.com/heritage-sites-service/internal/usecase"
	"github.com/heritage-sites-service/internal/worker"
)

const (
	maxBatchSize    = 20                     // максимум сообщений за раз
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
)

// NearbyRecalcWorker обрабатывает события пересчёта nearby-дистанций:
// правка координат сайта в админ-панели публикует событие, воркер
// перечитывает сайт и пересчитывает дистанции его nearby-списка.
type NearbyRecalcWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	nearbyUC     *usecase.NearbyUseCase
	consumerName string
}

// NewNearbyRecalcWorker создает новый NearbyRecalcWorker
func NewNearbyRecalcWorker(
	streamRepo repository.StreamRepository,
	nearbyUC *usecase.NearbyUseCase,
	consumerGroup string,
	logger *zap.Logger,
) *NearbyRecalcWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &NearbyRecalcWorker{
		BaseWorker:   worker.NewBaseWorker("nearby-recalc", consumerGroup, logger),
		streamRepo:   streamRepo,
		nearbyUC:     nearbyUC,
		consumerName: consumerName,
	}
}

// Start запускает воркер
func (w *NearbyRecalcWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting NearbyRecalcWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamNearbyRecalc, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				time.Sleep(time.Second) // пауза при ошибке
				continue
			}

			if processed == 0 {
				time.Sleep(emptyQueueSleep)
			}
		}
	}
}

// processBatch читает и обрабатывает пачку событий.
// Возвращает количество прочитанных сообщений.
func (w *NearbyRecalcWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamNearbyRecalc,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil
	}

	for _, msg := range messages {
		var event domain.NearbyRecalcEvent
		if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
			logger.Warn("Failed to parse recalc event, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// ACK битое сообщение чтобы не застревало
			_ = w.streamRepo.AckMessage(ctx, domain.StreamNearbyRecalc, w.ConsumerGroup(), msg.ID)
			continue
		}

		// Пересчёт идемпотентен: сбой логируем и подтверждаем,
		// следующая правка координат запустит его снова
		if _, err := w.nearbyUC.RecalculateForSite(ctx, event.SiteID); err != nil {
			logger.Error("Failed to recalculate nearby distances",
				zap.String("event_id", event.EventID),
				zap.Int64("site_id", event.SiteID),
				zap.Error(err))
		} else {
			logger.Debug("Nearby distances recalculated",
				zap.String("event_id", event.EventID),
				zap.Int64("site_id", event.SiteID))
		}

		_ = w.streamRepo.AckMessage(ctx, domain.StreamNearbyRecalc, w.ConsumerGroup(), msg.ID)
	}

	return len(messages), nil
}
