package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/domain/repository"
)

const syncStateKey = "app:sync:state"

type appStateRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewAppStateRepository(r *Redis) repository.AppStateRepository {
	return &appStateRepository{
		client: r.Client(),
		logger: r.logger,
	}
}

// GetSyncState возвращает снимок последней синхронизации, nil при отсутствии
func (r *appStateRepository) GetSyncState(ctx context.Context) (*domain.SyncState, error) {
	data, err := r.client.Get(ctx, syncStateKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get sync state", zap.Error(err))
		return nil, fmt.Errorf("sync state get error: %w", err)
	}

	var state domain.SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		r.logger.Warn("Failed to unmarshal sync state", zap.Error(err))
		return nil, nil
	}

	return &state, nil
}

// SetSyncState сохраняет снимок без TTL - состояние живёт до следующего прогона
func (r *appStateRepository) SetSyncState(ctx context.Context, state *domain.SyncState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("sync state marshal error: %w", err)
	}

	if err := r.client.Set(ctx, syncStateKey, data, 0).Err(); err != nil {
		r.logger.Error("Failed to set sync state", zap.Error(err))
		return fmt.Errorf("sync state set error: %w", err)
	}

	return nil
}
