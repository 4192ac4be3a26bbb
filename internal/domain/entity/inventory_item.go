package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem é a projeção desnormalizada (snapshot V1) lida diretamente
// pela UI: uma linha por lote, com cópias dos campos de catálogo e lote mais a
// quantidade AGREGADA de todos os balances daquele lote. Derivada, não
// autoritativa: deve sempre poder ser reconstruída a partir do ledger.
type InventoryItem struct {
	ID              string
	CatalogID       string // vazio em linhas legadas; o auditor usa id sintético
	BatchID         string
	LocationID      string // local primário (balance de maior quantidade)
	SapCode         string
	Name            string
	Lot             string
	Category        string
	Unit            string
	Quantity        decimal.Decimal // agregada, arredondada a 3 casas
	MinQuantity     decimal.Decimal
	Location        string // caminho plano do local primário
	Supplier        string
	ExpiryDate      *time.Time
	Status          string
	CasNumber       string
	ChemicalFormula string
	MolecularMass   string
	HazardRisks     []string
	Controlled      bool
	UpdatedAt       time.Time
}
