package dto

import "github.com/heritage-sites-service/internal/domain"

// SearchRequest - текстовый поиск по кешу сайтов
type SearchRequest struct {
	Query string `json:"q" validate:"required,min=1"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=200"`
}

// CreateSiteRequest - создание сайта из админ-панели
type CreateSiteRequest struct {
	Name          string              `json:"name" validate:"required,min=1"`
	Description   string              `json:"description"`
	Location      string              `json:"location"`
	District      string              `json:"district"`
	Category      string              `json:"category"`
	Latitude      *float64            `json:"latitude"`
	Longitude     *float64            `json:"longitude"`
	Coordinates   *domain.Coordinates `json:"coordinates"`
	VisitingHours string              `json:"visiting_hours"`
	EntryFee      string              `json:"entry_fee"`
	Rating        *float64            `json:"rating" validate:"omitempty,min=0,max=5"`
	ImageURL      string              `json:"image_url"`
	Gallery       []string            `json:"gallery"`
}

// UpdateSiteRequest - частичное обновление сайта; nil-поля
// не трогают сохранённые значения
type UpdateSiteRequest struct {
	Name          *string             `json:"name"`
	Description   *string             `json:"description"`
	Location      *string             `json:"location"`
	District      *string             `json:"district"`
	Category      *string             `json:"category"`
	Latitude      *float64            `json:"latitude"`
	Longitude     *float64            `json:"longitude"`
	Coordinates   *domain.Coordinates `json:"coordinates"`
	VisitingHours *string             `json:"visiting_hours"`
	EntryFee      *string             `json:"entry_fee"`
	Distance      *string             `json:"distance"`
	Rating        *float64            `json:"rating" validate:"omitempty,min=0,max=5"`
	ImageURL      *string             `json:"image_url"`
	Gallery       []string            `json:"gallery"`
}

// ToPatch переводит запрос в патч локального кеша
func (r *UpdateSiteRequest) ToPatch(id int64) *domain.SitePatch {
	return &domain.SitePatch{
		ID:            id,
		Name:          r.Name,
		Description:   r.Description,
		Location:      r.Location,
		District:      r.District,
		Category:      r.Category,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		Coordinates:   r.Coordinates,
		VisitingHours: r.VisitingHours,
		EntryFee:      r.EntryFee,
		Distance:      r.Distance,
		Rating:        r.Rating,
		ImageURL:      r.ImageURL,
		Gallery:       r.Gallery,
	}
}

// HasCoordinates сообщает, несёт ли запрос новые координаты
func (r *UpdateSiteRequest) HasCoordinates() bool {
	if r.Latitude != nil && r.Longitude != nil {
		return true
	}
	return r.Coordinates != nil &&
		r.Coordinates.Latitude != nil && r.Coordinates.Longitude != nil
}

// AddVisitedRequest - отметка о посещении
type AddVisitedRequest struct {
	Notes string `json:"notes"`
}

// FullSyncRequest - запуск полной синхронизации для пользователя
type FullSyncRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// AddNearbyRequest - добавление ссылки в nearby-список сайта
type AddNearbyRequest struct {
	RefID    string `json:"ref_id" validate:"required"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// MoveNearbyRequest - перестановка ссылки в nearby-списке
type MoveNearbyRequest struct {
	RefID     string `json:"ref_id" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=up down"`
}
