package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogProduct é a identidade de um produto do catálogo (ledger V2).
// Identidade imutável; campos descritivos mutáveis. Nunca é removido enquanto
// houver InventoryBatch referenciando-o (constraint no banco).
type CatalogProduct struct {
	ID              string
	SapCode         string // código SAP/SKU, único por produto
	Name            string
	Category        string
	BaseUnit        string // g, mL, un...
	CasNumber       string // identificador químico (CAS)
	ChemicalFormula string
	MolecularMass   string
	HazardRisks     []string // GHS: inflamável, corrosivo, tóxico...
	Controlled      bool     // produto controlado (Polícia Federal / Exército)
	MinStock        decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
