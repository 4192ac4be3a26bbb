package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance é o ÚNICO registro autoritativo de quantidade: um par
// (lote, local) com quantidade não negativa. A soma dos balances de um lote é
// a quantidade total daquele lote. Mutado exclusivamente pelo orquestrador de
// transações ou pela importação em massa.
type StockBalance struct {
	BatchID        string
	LocationID     string
	Quantity       decimal.Decimal
	LastMovementAt time.Time
}
