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

// SyncHandler - обработчик запуска и статуса синхронизации
type SyncHandler struct {
	syncUC *usecase.SyncUseCase
	logger *zap.Logger
}

// NewSyncHandler - создание нового SyncHandler
func NewSyncHandler(syncUC *usecase.SyncUseCase, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		syncUC: syncUC,
		logger: logger,
	}
}

// TriggerFullSync godoc
// @Summary Полная двусторонняя синхронизация
// @Description Подтягивает коллекцию сайтов, затем избранное и посещённое пользователя, затем выталкивает локальные списки наружу. Если синхронизация уже идёт, запрос становится no-op.
// @Tags Sync
// @Accept json
// @Produce json
// @Param request body dto.FullSyncRequest true "Пользователь для синхронизации"
// @Success 200 {object} utils.SuccessResponse{data=dto.SyncStatusResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/sync [post]
func (h *SyncHandler) TriggerFullSync(c *fiber.Ctx) error {
	var req dto.FullSyncRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := h.syncUC.PerformFullSync(c.Context(), req.UserID); err != nil {
		return utils.SendError(c, err)
	}

	state, inProgress := h.syncUC.Status(c.Context())
	return utils.SendSuccess(c, dto.SyncStatusResponse{
		InProgress: inProgress,
		State:      state,
	}, nil)
}

// Status godoc
// @Summary Состояние последней синхронизации
// @Tags Sync
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.SyncStatusResponse}
// @Router /api/v1/sync/status [get]
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	state, inProgress := h.syncUC.Status(c.Context())

	return utils.SendSuccess(c, dto.SyncStatusResponse{
		InProgress: inProgress,
		State:      state,
	}, nil)
}
