package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/domain"
	"github.com/heritage-sites-service/internal/pkg/errors"
	"github.com/heritage-sites-service/internal/pkg/utils"
	"github.com/heritage-sites-service/internal/pkg/validator"
	"github.com/heritage-sites-service/internal/usecase"
	"github.com/heritage-sites-service/internal/usecase/dto"
)

// NearbyHandler - обработчик nearby-списков сайтов
type NearbyHandler struct {
	nearbyUC *usecase.NearbyUseCase
	siteUC   *usecase.SiteUseCase
	logger   *zap.Logger
}

// NewNearbyHandler - создание нового NearbyHandler
func NewNearbyHandler(nearbyUC *usecase.NearbyUseCase, siteUC *usecase.SiteUseCase, logger *zap.Logger) *NearbyHandler {
	return &NearbyHandler{
		nearbyUC: nearbyUC,
		siteUC:   siteUC,
		logger:   logger,
	}
}

// Recalculate godoc
// @Summary Синхронный пересчёт nearby-дистанций
// @Description Пересчитывает DistanceKm каждой ссылки против локального кеша. Сбой отдельной ссылки оставляет её прежнее значение.
// @Tags Nearby
// @Produce json
// @Param id path int true "ID сайта"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyListResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sites/{id}/nearby/recalculate [post]
func (h *NearbyHandler) Recalculate(c *fiber.Ctx) error {
	id, err := parseSiteID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	site, err := h.nearbyUC.RecalculateForSite(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, nearbyResponse(site), nil)
}

// SearchCandidates godoc
// @Summary Поиск кандидатов для nearby-списка
// @Tags Nearby
// @Produce json
// @Param id path int true "ID сайта"
// @Param q query string true "Поисковый запрос"
// @Success 200 {object} utils.SuccessResponse{data=dto.SiteListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/sites/{id}/nearby/candidates [get]
func (h *NearbyHandler) SearchCandidates(c *fiber.Ctx) error {
	if _, err := parseSiteID(c, "id"); err != nil {
		return utils.SendError(c, err)
	}

	sites, err := h.nearbyUC.SearchCandidates(c.Context(), c.Query("q"), h.searchSites)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.SiteListResponse{Sites: sites, Total: len(sites)}, &utils.Meta{Total: len(sites)})
}

// AddRef godoc
// @Summary Добавить ссылку в nearby-список
// @Description Ссылка дописывается в конец списка; дубликат по ID - no-op. Дистанция считается сразу, если координаты известны с обеих сторон.
// @Tags Nearby
// @Accept json
// @Produce json
// @Param id path int true "ID сайта"
// @Param request body dto.AddNearbyRequest true "Добавляемая ссылка"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyListResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sites/{id}/nearby [post]
func (h *NearbyHandler) AddRef(c *fiber.Ctx) error {
	id, err := parseSiteID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.AddNearbyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	site, err := h.nearbyUC.AddRef(c.Context(), id, domain.NearbyRef{
		ID:       req.RefID,
		Name:     req.Name,
		Category: req.Category,
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, nearbyResponse(site), nil)
}

// RemoveRef godoc
// @Summary Убрать ссылку из nearby-списка
// @Tags Nearby
// @Produce json
// @Param id path int true "ID сайта"
// @Param refID path string true "ID ссылки"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyListResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sites/{id}/nearby/{refID} [delete]
func (h *NearbyHandler) RemoveRef(c *fiber.Ctx) error {
	id, err := parseSiteID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	refID := c.Params("refID")
	if refID == "" {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	site, err := h.nearbyUC.RemoveRef(c.Context(), id, refID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, nearbyResponse(site), nil)
}

// MoveRef godoc
// @Summary Переставить ссылку в nearby-списке
// @Description Сдвигает ссылку на одну позицию вверх или вниз; на границе списка - no-op.
// @Tags Nearby
// @Accept json
// @Produce json
// @Param id path int true "ID сайта"
// @Param request body dto.MoveNearbyRequest true "Направление перестановки"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/sites/{id}/nearby/move [post]
func (h *NearbyHandler) MoveRef(c *fiber.Ctx) error {
	id, err := parseSiteID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.MoveNearbyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	site, err := h.nearbyUC.MoveRef(c.Context(), id, req.RefID, req.Direction)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, nearbyResponse(site), nil)
}

// RequestRecalc godoc
// @Summary Асинхронный пересчёт nearby-дистанций
// @Description Публикует событие пересчёта в поток; фактический пересчёт выполняет воркер.
// @Tags Nearby
// @Param id path int true "ID сайта"
// @Success 200 {object} utils.SuccessResponse
// @Router /api/v1/sites/{id}/nearby/recalculate-async [post]
func (h *NearbyHandler) RequestRecalc(c *fiber.Ctx) error {
	id, err := parseSiteID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.nearbyUC.RequestRecalc(c.Context(), id); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{"queued": id}, nil)
}

func (h *NearbyHandler) searchSites(ctx context.Context, query string) ([]*domain.Site, error) {
	result, err := h.siteUC.Search(ctx, dto.SearchRequest{Query: query})
	if err != nil {
		return nil, err
	}
	return result.Sites, nil
}

func nearbyResponse(site *domain.Site) dto.NearbyListResponse {
	return dto.NearbyListResponse{
		SiteID: site.ID,
		Nearby: site.Nearby,
	}
}
