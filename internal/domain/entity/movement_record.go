package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRecord é a projeção desnormalizada de um StockMovement para consumo
// direto da UI, com cópias de nome do produto e lote para evitar joins.
type MovementRecord struct {
	ID           string
	ItemID       string
	MovementID   string
	ProductName  string
	Lot          string
	Type         string
	Quantity     decimal.Decimal
	FromLocation string
	ToLocation   string
	PerformedBy  string
	Observation  string
	Date         time.Time
}
