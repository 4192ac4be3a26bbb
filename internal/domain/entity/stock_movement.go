package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimentação de estoque.
const (
	MovementTypeEntrada       = "ENTRADA"
	MovementTypeSaida         = "SAIDA"
	MovementTypeAjuste        = "AJUSTE"
	MovementTypeTransferencia = "TRANSFERENCIA"
)

// StockMovement é um lançamento imutável do ledger (append-only): nunca é
// atualizado nem removido após criado (trilha de auditoria).
type StockMovement struct {
	ID             string
	BatchID        string
	Type           string // ENTRADA, SAIDA, AJUSTE, TRANSFERENCIA
	Quantity       decimal.Decimal // delta em magnitude
	FromLocationID string
	ToLocationID   string
	PerformedBy    string // UserID
	Observation    string
	CreatedAt      time.Time
}

// ValidMovementType indica se o tipo informado é um dos quatro aceitos.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeEntrada, MovementTypeSaida, MovementTypeAjuste, MovementTypeTransferencia:
		return true
	}
	return false
}
