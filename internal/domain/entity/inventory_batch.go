package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status possíveis de um lote.
const (
	BatchStatusActive     = "ACTIVE"
	BatchStatusBlocked    = "BLOCKED"
	BatchStatusQuarantine = "QUARANTINE"
	BatchStatusObsolete   = "OBSOLETE"
)

// InventoryBatch representa um lote físico de um CatalogProduct (ledger V2).
// Criado no primeiro recebimento de estoque daquele lote. Remover um lote
// remove em cascata seus StockBalance.
type InventoryBatch struct {
	ID         string
	CatalogID  string
	Lot        string
	PartnerID  string // fornecedor (BusinessPartner), opcional
	ExpiryDate *time.Time
	UnitCost   decimal.Decimal
	Status     string // ACTIVE, BLOCKED, QUARANTINE, OBSOLETE
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
