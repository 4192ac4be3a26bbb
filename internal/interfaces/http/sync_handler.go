package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ojsouza/almoxarifado-api/internal/application/dto"
	syncapp "github.com/ojsouza/almoxarifado-api/internal/application/sync"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
)

// SyncHandler expõe a sincronização com o backend remoto.
type SyncHandler struct {
	manager *syncapp.Manager
	queue   *syncapp.Queue
}

// NewSyncHandler constrói o handler de sincronização.
func NewSyncHandler(manager *syncapp.Manager, queue *syncapp.Queue) *SyncHandler {
	return &SyncHandler{manager: manager, queue: queue}
}

// Status godoc
// @Summary      Estado da sincronização
// @Tags         sync
// @Produce      json
// @Success      200  {object}  sync.Status
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/sync/status [get]
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	status, err := h.manager.Status(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(status)
}

// Drain godoc
// @Summary      Disparar o envio das operações pendentes
// @Tags         sync
// @Produce      json
// @Success      202  {object}  dto.MessageResponse
// @Router       /api/sync/drain [post]
func (h *SyncHandler) Drain(c *fiber.Ctx) error {
	h.queue.Kick()
	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: "drain agendado"})
}

// FromCloud godoc
// @Summary      Substituir o estado local pelo remoto
// @Description  Requer fila local vazia: pendências seriam sobrescritas pelo download. Com pendências, dispara o drain e devolve 409.
// @Tags         sync
// @Produce      json
// @Success      200  {object}  dto.MessageResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/sync/from-cloud [post]
func (h *SyncHandler) FromCloud(c *fiber.Ctx) error {
	err := h.manager.SyncFromCloud(c.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRemoteNotConfigured):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "REMOTE_NOT_CONFIGURED", Message: "backend remoto não configurado"})
		case errors.Is(err, domain.ErrPendingLocalChanges):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PENDING_LOCAL_CHANGES", Message: "há operações locais pendentes; drain disparado, tente novamente"})
		case errors.Is(err, domain.ErrRemoteUnavailable):
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "REMOTE_UNAVAILABLE", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.JSON(dto.MessageResponse{Message: "estado local substituído pelo remoto"})
}
