package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ojsouza/almoxarifado-api/internal/application/dto"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
)

// ItemHandler trata as consultas, remoções e reconstrução de snapshots.
type ItemHandler struct {
	uc        *inventory.QueryUseCase
	rebuilder *inventory.SnapshotRebuilder
}

// NewItemHandler constrói o handler de itens.
func NewItemHandler(uc *inventory.QueryUseCase, rebuilder *inventory.SnapshotRebuilder) *ItemHandler {
	return &ItemHandler{uc: uc, rebuilder: rebuilder}
}

// List godoc
// @Summary      Listar itens do inventário
// @Tags         items
// @Produce      json
// @Param        q  query  string  false  "busca livre (nome, SAP, lote, CAS)"
// @Success      200  {array}  dto.ItemResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	items, err := h.uc.ListItems(c.Context(), c.Query("q"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToItemResponses(items))
}

// GetByID godoc
// @Summary      Buscar item por id
// @Tags         items
// @Produce      json
// @Param        id  path  string  true  "id do item"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.uc.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item não encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToItemResponse(item))
}

// Delete godoc
// @Summary      Remover item (e o lote correspondente no ledger)
// @Tags         items
// @Produce      json
// @Param        id  path  string  true  "id do item"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	err := h.uc.DeleteItem(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item não encontrado"})
		}
		if errors.Is(err, domain.ErrIntegrity) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INTEGRITY", Message: "item referenciado por outros registros"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.MessageResponse{Message: "item removido"})
}

// Rebuild godoc
// @Summary      Reconstruir o snapshot a partir do ledger
// @Description  Recomputa a quantidade agregada, o local primário e os campos descritivos do item a partir das tabelas autoritativas.
// @Tags         items
// @Produce      json
// @Param        id  path  string  true  "id do item"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/rebuild [post]
func (h *ItemHandler) Rebuild(c *fiber.Ctx) error {
	item, err := h.uc.GetItem(c.Context(), c.Params("id"))
	if err == nil && item.BatchID == "" {
		err = domain.ErrNotFound // linha legada sem lote: nada a reconstruir
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item não encontrado ou sem lote"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	rebuilt, err := h.rebuilder.Rebuild(c.Context(), item.BatchID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote não encontrado no ledger"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToItemResponse(rebuilt))
}
