package repository

import (
	"context"

	"github.com/heritage-sites-service/internal/domain"
)

// UserSiteRepository определяет методы для избранного и посещений
type UserSiteRepository interface {
	// AddFavorite добавляет пару (user, site); повторное добавление - no-op
	AddFavorite(ctx context.Context, userID string, siteID int64) error

	// RemoveFavorite удаляет пару; отсутствующая пара - no-op
	RemoveFavorite(ctx context.Context, userID string, siteID int64) error

	// GetFavorites возвращает избранные сайты пользователя
	GetFavorites(ctx context.Context, userID string) ([]*domain.FavoriteSite, error)

	// IsFavorited проверяет наличие пары
	IsFavorited(ctx context.Context, userID string, siteID int64) (bool, error)

	// AddVisited добавляет отметку о посещении; повторное добавление - no-op
	AddVisited(ctx context.Context, visit *domain.VisitedSite) error

	// RemoveVisited удаляет отметку; отсутствующая - no-op
	RemoveVisited(ctx context.Context, userID string, siteID int64) error

	// GetVisited возвращает посещённые сайты пользователя
	GetVisited(ctx context.Context, userID string) ([]*domain.VisitedSite, error)

	// IsVisited проверяет наличие отметки
	IsVisited(ctx context.Context, userID string, siteID int64) (bool, error)

	// BulkAddFavorites применяет пачку в одной транзакции, всё или ничего
	BulkAddFavorites(ctx context.Context, favorites []*domain.FavoriteSite) error

	// BulkAddVisited применяет пачку в одной транзакции, всё или ничего
	BulkAddVisited(ctx context.Context, visits []*domain.VisitedSite) error
}
