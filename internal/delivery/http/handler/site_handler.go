package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/pkg/errors"
	"github.com/heritage-sites-service/internal/pkg/utils"
	"github.com/heritage-sites-service/internal/pkg/validator"
	"github.com/heritage-sites-service/internal/usecase"
	"github.com/heritage-sites-service/internal/usecase/dto"
)

// SiteHandler - обработчик чтения и CRUD сайтов
type SiteHandler struct {
	siteUC *usecase.SiteUseCase
	syncUC *usecase.SyncUseCase
	logger *zap.Logger
}

// NewSiteHandler - создание нового SiteHandler
func NewSiteHandler(siteUC *usecase.SiteUseCase, syncUC *usecase.SyncUseCase, logger *zap.Logger) *SiteHandler {
	return &SiteHandler{
		siteUC: siteUC,
		syncUC: syncUC,
		logger: logger,
	}
}

// GetAll godoc
// @Summary Список сайтов с best-effort синхронизацией
// @Description Возвращает все сайты локального кеша, предварительно попытавшись подтянуть удалённую коллекцию. Неудача синхронизации не ошибка: отдаётся кешированное содержимое.
// @Tags Sites
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.SiteListResponse}
// @Router /api/v1/sites [get]
func (h *SiteHandler) GetAll(c *fiber.Ctx) error {
	sites := h.syncUC.GetAllSitesWithSync(c.Context())

	result := dto.SiteListResponse{
		Sites: sites,
		Total: len(sites),
	}

	return utils.SendSuccess(c, result, &utils.Meta{Total: result.Total})
}

// Search godoc
// @Summary Поиск по кешу сайтов
// @Description Регистронезависимый поиск подстроки по имени, описанию и локации. Пустой запрос отклоняется.
// @Tags Sites
// @Produce json
// @Param q query string true "Поисковый запрос"
// @Param limit query int false "Максимум результатов" default(50)
// @Success 200 {object} utils.SuccessResponse{data=dto.SiteListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/sites/search [get]
func (h *SiteHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	req.Query = c.Query("q")
	req.Limit = c.QueryInt("limit", 0)

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrEmptySearchQuery)
	}

	result, err := h.siteUC.Search(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{Total: result.Total})
}

// GetByID godoc
// @Summary Сайт по ID
// @Tags Sites
// @Produce json
// @Param id path int true "ID сайта"
// @Success 200 {object} utils.SuccessResponse{data=domain.Site}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sites/{id} [get]
func (h *SiteHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseSiteID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	site, err := h.siteUC.GetByID(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, site, nil)
}

// Create godoc
// @Summary Создание сайта
// @Tags Sites
// @Accept json
// @Produce json
// @Param request body dto.CreateSiteRequest true "Новый сайт"
// @Success 200 {object} utils.SuccessResponse{data=domain.Site}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/sites [post]
func (h *SiteHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSiteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	site, err := h.siteUC.Create(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, site, nil)
}

// Update godoc
// @Summary Частичное обновление сайта
// @Description Обновляет только присланные поля; пропущенные остаются нетронутыми. Смена координат запускает асинхронный пересчёт nearby-дистанций.
// @Tags Sites
// @Accept json
// @Produce json
// @Param id path int true "ID сайта"
// @Param request body dto.UpdateSiteRequest true "Изменяемые поля"
// @Success 200 {object} utils.SuccessResponse{data=domain.Site}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sites/{id} [put]
func (h *SiteHandler) Update(c *fiber.Ctx) error {
	id, err := parseSiteID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.UpdateSiteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	site, err := h.siteUC.Update(c.Context(), id, req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, site, nil)
}

// Delete godoc
// @Summary Удаление сайта
// @Description Удаляет сайт и каскадно его favorite/visited строки одной транзакцией.
// @Tags Sites
// @Param id path int true "ID сайта"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sites/{id} [delete]
func (h *SiteHandler) Delete(c *fiber.Ctx) error {
	id, err := parseSiteID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.siteUC.Delete(c.Context(), id); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{"deleted": id}, nil)
}

func parseSiteID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrInvalidSiteID
	}
	return id, nil
}
