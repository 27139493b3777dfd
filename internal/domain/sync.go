package domain

import "time"

// Stream names (должны совпадать с админ-панелью)
const (
	StreamNearbyRecalc = "stream:sites:nearby"
)

// NearbyRecalcEvent - событие на пересчёт дистанций nearby-списка
// сайта после изменения его координат.
type NearbyRecalcEvent struct {
	EventID string `json:"event_id"`
	SiteID  int64  `json:"site_id"`
}

// StreamMessage - сообщение из Redis Stream.
type StreamMessage struct {
	ID   string
	Data string
}

// SyncState - снимок последнего прогона синхронизации.
// Используется только как сигнал наблюдаемости, не для корректности.
type SyncState struct {
	RunID        string    `json:"run_id"`
	LastSyncAt   time.Time `json:"last_sync_at"`
	SitesSynced  int       `json:"sites_synced"`
	SitesFailed  int       `json:"sites_failed"`
	DedupRemoved int64     `json:"dedup_removed"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
}
