package domain

import "time"

// FavoriteSite - уникальная пара (пользователь, сайт).
// Создаётся и удаляется только явным действием пользователя.
type FavoriteSite struct {
	UserID    string    `json:"user_id" db:"user_id"`
	SiteID    int64     `json:"site_id" db:"site_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// VisitedSite - отметка о посещении сайта с опциональной заметкой.
type VisitedSite struct {
	UserID    string    `json:"user_id" db:"user_id"`
	SiteID    int64     `json:"site_id" db:"site_id"`
	VisitedAt time.Time `json:"visited_at" db:"visited_at"`
	Notes     string    `json:"notes" db:"notes"`
}

// RemoteFavorite - запись избранного в удалённом хранилище,
// сайт адресуется строковым ID документа.
type RemoteFavorite struct {
	SiteID    string    `json:"site_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RemoteVisit - запись о посещении в удалённом хранилище.
type RemoteVisit struct {
	SiteID    string    `json:"site_id"`
	VisitedAt time.Time `json:"visited_at"`
	Notes     string    `json:"notes"`
}
