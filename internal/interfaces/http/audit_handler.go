package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ojsouza/almoxarifado-api/internal/application/dto"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
)

// AuditHandler dispara a auditoria ledger × snapshot.
type AuditHandler struct {
	auditor *inventory.LedgerAuditor
}

// NewAuditHandler constrói o handler de auditoria.
func NewAuditHandler(auditor *inventory.LedgerAuditor) *AuditHandler {
	return &AuditHandler{auditor: auditor}
}

// Run godoc
// @Summary      Auditar consistência entre ledger e snapshot
// @Description  Compara a soma de balances por lote com a quantidade do snapshot. Com fix=true corrige o snapshot (o ledger é autoritativo).
// @Tags         audit
// @Produce      json
// @Param        fix  query  bool  false  "corrigir divergências"
// @Success      200  {object}  inventory.AuditResult
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/audit [post]
func (h *AuditHandler) Run(c *fiber.Ctx) error {
	result, err := h.auditor.Run(c.Context(), c.QueryBool("fix"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(result)
}
