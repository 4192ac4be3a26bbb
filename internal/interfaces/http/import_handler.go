package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ojsouza/almoxarifado-api/internal/application/dto"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
)

// ImportHandler trata a importação em massa de itens.
type ImportHandler struct {
	uc *inventory.ImportUseCase
}

// NewImportHandler constrói o handler de importação.
func NewImportHandler(uc *inventory.ImportUseCase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

// Run godoc
// @Summary      Importar itens em massa
// @Description  Em modo merge (padrão) campos vazios não apagam valores locais e a quantidade existente é preservada salvo overwriteQuantities. replace=true substitui todo o inventário.
// @Tags         import
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ImportRequest  true  "linhas + modo"
// @Success      200   {object}  inventory.ImportResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/import [post]
func (h *ImportHandler) Run(c *fiber.Ctx) error {
	var in dto.ImportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items é obrigatório"})
	}

	rows := make([]inventory.ImportRow, len(in.Items))
	for i, it := range in.Items {
		rows[i] = inventory.ImportRow{
			SapCode:         it.SapCode,
			Name:            it.Name,
			Lot:             it.Lot,
			Category:        it.Category,
			Unit:            it.Unit,
			Quantity:        it.Quantity,
			MinQuantity:     it.MinQuantity,
			Warehouse:       it.Warehouse,
			Cabinet:         it.Cabinet,
			Shelf:           it.Shelf,
			Position:        it.Position,
			Supplier:        it.Supplier,
			ExpiryDate:      it.ExpiryDate,
			Status:          it.Status,
			CasNumber:       it.CasNumber,
			ChemicalFormula: it.ChemicalFormula,
			MolecularMass:   it.MolecularMass,
			HazardRisks:     it.HazardRisks,
			Controlled:      it.Controlled,
			UnitCost:        it.UnitCost,
		}
	}
	result, err := h.uc.Import(c.Context(), rows, inventory.ImportOptions{
		Replace:             in.Replace,
		OverwriteQuantities: in.OverwriteQuantities,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(result)
}
