package repository

import (
	"context"

	"github.com/heritage-sites-service/internal/domain"
)

// SiteRepository определяет методы локального кеша сайтов
type SiteRepository interface {
	// GetAll возвращает все сайты, отсортированные по имени
	GetAll(ctx context.Context) ([]*domain.Site, error)

	// GetByID возвращает сайт или nil, если строки нет
	GetByID(ctx context.Context, id int64) (*domain.Site, error)

	// Search выполняет регистронезависимый поиск по имени, описанию и локации
	Search(ctx context.Context, query string, limit int) ([]*domain.Site, error)

	// Upsert вставляет или частично обновляет сайт; nil-поля патча
	// не затирают сохранённые значения
	Upsert(ctx context.Context, patch *domain.SitePatch) error

	// Delete удаляет сайт вместе со связанными favorite/visited строками
	Delete(ctx context.Context, id int64) error

	// Deduplicate схлопывает строки с одинаковым remote_id,
	// оставляя последнюю обновлённую; возвращает число удалённых строк
	Deduplicate(ctx context.Context) (int64, error)

	// Count возвращает количество строк в кеше
	Count(ctx context.Context) (int, error)
}
