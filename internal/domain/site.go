package domain

import (
	"strconv"
	"time"
)

// Site представляет объект культурного наследия в локальном кеше.
// Каноническая форма: по одному полю на концепцию, алиасы удалённого
// документа сводятся к ней на границе (NormalizeRemoteSite).
type Site struct {
	ID            int64       `json:"id" db:"id"`
	RemoteID      string      `json:"remote_id,omitempty" db:"remote_id"`
	Name          string      `json:"name" db:"name"`
	Description   string      `json:"description" db:"description"`
	Location      string      `json:"location" db:"location"`
	District      string      `json:"district" db:"district"`
	Category      string      `json:"category" db:"category"`
	Latitude      float64     `json:"latitude" db:"latitude"`
	Longitude     float64     `json:"longitude" db:"longitude"`
	VisitingHours string      `json:"visiting_hours" db:"visiting_hours"`
	EntryFee      string      `json:"entry_fee" db:"entry_fee"`
	Distance      string      `json:"distance" db:"distance"`
	Rating        float64     `json:"rating" db:"rating"`
	ImageURL      string      `json:"image_url" db:"image_url"`
	Gallery       []string    `json:"gallery" db:"gallery"`
	Nearby        []NearbyRef `json:"nearby,omitempty" db:"nearby"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// Coords возвращает координаты сайта, если они заданы.
func (s *Site) Coords() (Point, bool) {
	if s.Latitude == 0 && s.Longitude == 0 {
		return Point{}, false
	}
	return Point{Lat: s.Latitude, Lon: s.Longitude}, true
}

// NearbyRef - денормализованная ссылка на соседний сайт внутри
// владеющего документа. Порядок списка управляется пользователем,
// пересчёт дистанций его не меняет.
type NearbyRef struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Category   string   `json:"category,omitempty"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// Coordinates - вложенная форма координат удалённого документа.
type Coordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// SitePatch - частичное обновление сайта. nil-поле означает
// "не трогать сохранённое значение" (coalesce-on-null в хранилище).
type SitePatch struct {
	ID            int64
	RemoteID      string
	Name          *string
	Description   *string
	Location      *string
	District      *string
	Category      *string
	Latitude      *float64
	Longitude     *float64
	Coordinates   *Coordinates
	VisitingHours *string
	EntryFee      *string
	Distance      *string
	Rating        *float64
	ImageURL      *string
	Gallery       []string
	Nearby        []NearbyRef
}

// FlattenCoordinates нормализует координаты в плоские поля:
// приоритет у top-level значений, иначе берётся вложенный объект.
func (p *SitePatch) FlattenCoordinates() {
	if p.Latitude != nil && p.Longitude != nil {
		p.Coordinates = nil
		return
	}
	if p.Coordinates != nil && p.Coordinates.Latitude != nil && p.Coordinates.Longitude != nil {
		p.Latitude = p.Coordinates.Latitude
		p.Longitude = p.Coordinates.Longitude
	}
	p.Coordinates = nil
}

// RemoteSiteDocument - документ удалённой коллекции сайтов.
// Схема не форсируется: все поля опциональны, исторические алиасы
// (image/image_url, openingHours/visiting_hours, entranceFee/entry_fee)
// принимаются оба.
type RemoteSiteDocument struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Location      string       `json:"location"`
	District      string       `json:"district"`
	Category      string       `json:"category"`
	Latitude      *float64     `json:"latitude"`
	Longitude     *float64     `json:"longitude"`
	Coordinates   *Coordinates `json:"coordinates"`
	VisitingHours string       `json:"visiting_hours"`
	OpeningHours  string       `json:"openingHours"`
	EntryFee      string       `json:"entry_fee"`
	EntranceFee   string       `json:"entranceFee"`
	Distance      string       `json:"distance"`
	Rating        float64      `json:"rating"`
	ImageURL      string       `json:"image_url"`
	Image         string       `json:"image"`
	Gallery       []string     `json:"gallery"`
	Subplaces     []NearbyRef  `json:"subplaces"`
	Nearby        []NearbyRef  `json:"nearby"`
}

// Coords возвращает координаты документа с учётом обеих форм хранения.
func (d *RemoteSiteDocument) Coords() (Point, bool) {
	if d.Latitude != nil && d.Longitude != nil {
		return Point{Lat: *d.Latitude, Lon: *d.Longitude}, true
	}
	if d.Coordinates != nil && d.Coordinates.Latitude != nil && d.Coordinates.Longitude != nil {
		return Point{Lat: *d.Coordinates.Latitude, Lon: *d.Coordinates.Longitude}, true
	}
	return Point{}, false
}

// DeriveLocalID выводит стабильный локальный ID из ID удалённого
// документа: числовой ID парсится как есть, нечисловой детерминированно
// хешируется (hash*31 + code, свёртка в int32, модуль), так что один
// и тот же документ всегда попадает в одну и ту же локальную строку.
// Возвращает 0 для пустого ID - такой документ синхронизация пропускает.
func DeriveLocalID(remoteID string) int64 {
	if remoteID == "" {
		return 0
	}
	if n, err := strconv.ParseInt(remoteID, 10, 64); err == nil && n > 0 {
		return n
	}
	var h int32
	for _, r := range remoteID {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	if v == 0 {
		v = int64(len(remoteID))
	}
	return v
}

// NormalizeRemoteSite сводит свободную форму удалённого документа
// к каноническому SitePatch. Алиас админ-панели приоритетен, когда
// заполнены оба варианта. Возвращает nil для документа без ID.
func NormalizeRemoteSite(doc *RemoteSiteDocument) *SitePatch {
	localID := DeriveLocalID(doc.ID)
	if localID == 0 {
		return nil
	}

	patch := &SitePatch{
		ID:          localID,
		RemoteID:    doc.ID,
		Name:        optString(doc.Name),
		Description: optString(doc.Description),
		Location:    optString(doc.Location),
		District:    optString(doc.District),
		Category:    optString(doc.Category),
		Distance:    optString(doc.Distance),
		Latitude:    doc.Latitude,
		Longitude:   doc.Longitude,
		Coordinates: doc.Coordinates,
	}

	patch.VisitingHours = coalesceAlias(doc.OpeningHours, doc.VisitingHours)
	patch.EntryFee = coalesceAlias(doc.EntranceFee, doc.EntryFee)
	patch.ImageURL = coalesceAlias(doc.Image, doc.ImageURL)

	if doc.Rating != 0 {
		rating := doc.Rating
		patch.Rating = &rating
	}

	if doc.Gallery != nil {
		patch.Gallery = doc.Gallery
	}

	switch {
	case len(doc.Subplaces) > 0:
		patch.Nearby = doc.Subplaces
	case len(doc.Nearby) > 0:
		patch.Nearby = doc.Nearby
	}

	patch.FlattenCoordinates()
	return patch
}

// coalesceAlias выбирает значение из пары алиасов, preferred первым.
func coalesceAlias(preferred, legacy string) *string {
	if preferred != "" {
		return &preferred
	}
	return optString(legacy)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
