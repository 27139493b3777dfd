package repository

import (
	"context"

	"github.com/heritage-sites-service/internal/domain"
)

// AppStateRepository хранит персистентное состояние приложения
type AppStateRepository interface {
	// GetSyncState возвращает снимок последней синхронизации или nil
	GetSyncState(ctx context.Context) (*domain.SyncState, error)

	// SetSyncState сохраняет снимок синхронизации
	SetSyncState(ctx context.Context, state *domain.SyncState) error
}
