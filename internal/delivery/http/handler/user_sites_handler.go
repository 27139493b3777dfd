package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/pkg/errors"
	"github.com/heritage-sites-service/internal/pkg/utils"
	"github.com/heritage-sites-service/internal/pkg/validator"
	"github.com/heritage-sites-service/internal/usecase"
	"github.com/heritage-sites-service/internal/usecase/dto"
)

// UserSitesHandler - обработчик избранного и посещённого пользователя
type UserSitesHandler struct {
	siteUC *usecase.SiteUseCase
	logger *zap.Logger
}

// NewUserSitesHandler - создание нового UserSitesHandler
func NewUserSitesHandler(siteUC *usecase.SiteUseCase, logger *zap.Logger) *UserSitesHandler {
	return &UserSitesHandler{
		siteUC: siteUC,
		logger: logger,
	}
}

// GetFavorites godoc
// @Summary Избранные сайты пользователя
// @Tags Users
// @Produce json
// @Param userID path string true "ID пользователя"
// @Success 200 {object} utils.SuccessResponse{data=[]domain.FavoriteSite}
// @Router /api/v1/users/{userID}/favorites [get]
func (h *UserSitesHandler) GetFavorites(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	favorites, err := h.siteUC.GetFavorites(c.Context(), userID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, favorites, &utils.Meta{Total: len(favorites)})
}

// AddFavorite godoc
// @Summary Добавить сайт в избранное
// @Description Идемпотентно: повторное добавление той же пары не ошибка.
// @Tags Users
// @Param userID path string true "ID пользователя"
// @Param siteID path int true "ID сайта"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/users/{userID}/favorites/{siteID} [post]
func (h *UserSitesHandler) AddFavorite(c *fiber.Ctx) error {
	userID := c.Params("userID")
	siteID, err := parseSiteID(c, "siteID")
	if err != nil || userID == "" {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := h.siteUC.AddFavorite(c.Context(), userID, siteID); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{"favorited": siteID}, nil)
}

// RemoveFavorite godoc
// @Summary Убрать сайт из избранного
// @Tags Users
// @Param userID path string true "ID пользователя"
// @Param siteID path int true "ID сайта"
// @Success 200 {object} utils.SuccessResponse
// @Router /api/v1/users/{userID}/favorites/{siteID} [delete]
func (h *UserSitesHandler) RemoveFavorite(c *fiber.Ctx) error {
	userID := c.Params("userID")
	siteID, err := parseSiteID(c, "siteID")
	if err != nil || userID == "" {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := h.siteUC.RemoveFavorite(c.Context(), userID, siteID); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{"removed": siteID}, nil)
}

// GetVisited godoc
// @Summary Посещённые сайты пользователя
// @Tags Users
// @Produce json
// @Param userID path string true "ID пользователя"
// @Success 200 {object} utils.SuccessResponse{data=[]domain.VisitedSite}
// @Router /api/v1/users/{userID}/visited [get]
func (h *UserSitesHandler) GetVisited(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	visited, err := h.siteUC.GetVisited(c.Context(), userID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, visited, &utils.Meta{Total: len(visited)})
}

// AddVisited godoc
// @Summary Отметить сайт посещённым
// @Tags Users
// @Accept json
// @Param userID path string true "ID пользователя"
// @Param siteID path int true "ID сайта"
// @Param request body dto.AddVisitedRequest false "Заметки о посещении"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/users/{userID}/visited/{siteID} [post]
func (h *UserSitesHandler) AddVisited(c *fiber.Ctx) error {
	userID := c.Params("userID")
	siteID, err := parseSiteID(c, "siteID")
	if err != nil || userID == "" {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	var req dto.AddVisitedRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest)
		}
		if err := validator.Validate(&req); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest)
		}
	}

	if err := h.siteUC.AddVisited(c.Context(), userID, siteID, req.Notes); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{"visited": siteID}, nil)
}

// RemoveVisited godoc
// @Summary Убрать отметку о посещении
// @Tags Users
// @Param userID path string true "ID пользователя"
// @Param siteID path int true "ID сайта"
// @Success 200 {object} utils.SuccessResponse
// @Router /api/v1/users/{userID}/visited/{siteID} [delete]
func (h *UserSitesHandler) RemoveVisited(c *fiber.Ctx) error {
	userID := c.Params("userID")
	siteID, err := parseSiteID(c, "siteID")
	if err != nil || userID == "" {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := h.siteUC.RemoveVisited(c.Context(), userID, siteID); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{"removed": siteID}, nil)
}
