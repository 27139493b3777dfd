package repository

import (
	"context"

	"github.com/heritage-sites-service/internal/domain"
)

// RemoteSiteRepository - внешняя документная коллекция сайтов.
// Читается целиком, без пагинации; схема полей не форсируется.
type RemoteSiteRepository interface {
	// FetchAll возвращает все документы коллекции сайтов
	FetchAll(ctx context.Context) ([]*domain.RemoteSiteDocument, error)

	// FetchUserFavorites возвращает избранное пользователя из удалённого хранилища
	FetchUserFavorites(ctx context.Context, userID string) ([]*domain.RemoteFavorite, error)

	// FetchUserVisited возвращает посещения пользователя из удалённого хранилища
	FetchUserVisited(ctx context.Context, userID string) ([]*domain.RemoteVisit, error)

	// PushUserFavorites заменяет избранное пользователя в удалённом хранилище
	PushUserFavorites(ctx context.Context, userID string, favorites []*domain.FavoriteSite) error

	// PushUserVisited заменяет посещения пользователя в удалённом хранилище
	PushUserVisited(ctx context.Context, userID string, visits []*domain.VisitedSite) error

	// Ping проверяет доступность удалённого хранилища
	Ping(ctx context.Context) bool
}
