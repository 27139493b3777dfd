package dto

import "github.com/heritage-sites-service/internal/domain"

// SiteListResponse - список сайтов с количеством
type SiteListResponse struct {
	Sites []*domain.Site `json:"sites"`
	Total int            `json:"total"`
}

// SyncStatusResponse - состояние синхронизации
type SyncStatusResponse struct {
	InProgress bool              `json:"in_progress"`
	State      *domain.SyncState `json:"state,omitempty"`
}

// NearbyListResponse - nearby-список сайта после операции
type NearbyListResponse struct {
	SiteID int64              `json:"site_id"`
	Nearby []domain.NearbyRef `json:"nearby"`
}
