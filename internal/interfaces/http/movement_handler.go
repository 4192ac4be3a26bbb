package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ojsouza/almoxarifado-api/internal/application/dto"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
)

// MovementHandler trata movimentações de estoque e o histórico.
type MovementHandler struct {
	process *inventory.ProcessTransactionUseCase
	query   *inventory.QueryUseCase
}

// NewMovementHandler constrói o handler de movimentações.
func NewMovementHandler(process *inventory.ProcessTransactionUseCase, query *inventory.QueryUseCase) *MovementHandler {
	return &MovementHandler{process: process, query: query}
}

// Create godoc
// @Summary      Registrar movimentação (ENTRADA, SAIDA, AJUSTE, TRANSFERENCIA)
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransactionRequest  true  "movimentação"
// @Success      201   {object}  dto.RecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.TransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}

	var date time.Time
	if in.Date != nil {
		date = *in.Date
	}
	record, err := h.process.Process(c.Context(), inventory.TransactionInput{
		ItemID:         in.ItemID,
		Type:           in.Type,
		Quantity:       in.Quantity,
		Date:           date,
		Observation:    in.Observation,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		UserID:         GetUserID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo ou quantidade inválidos"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item não encontrado"})
		case errors.Is(err, domain.ErrInsufficientStock):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "quantidade indisponível em estoque"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToRecordResponse(record))
}

// List godoc
// @Summary      Histórico de movimentações (mais recente primeiro)
// @Tags         movements
// @Produce      json
// @Param        itemId  query  string  false  "filtrar por item"
// @Success      200  {array}  dto.RecordResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	records, err := h.query.ListRecords(c.Context(), c.Query("itemId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToRecordResponses(records))
}
