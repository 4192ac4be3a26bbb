// Package sync implementa a replicação com o backend remoto: o drain da fila
// de operações locais (outbox) e o download completo do estado remoto.
package sync

import (
	"context"
	"encoding/json"

	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
)

// BatchItem é uma operação local embrulhada para envio em lote.
type BatchItem struct {
	ID      int64           `json:"id"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// BatchResult é o resultado individual de uma operação do lote.
type BatchResult struct {
	ID      int64  `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FullPayload é o estado completo do backend remoto, nas duas representações.
type FullPayload struct {
	Items    []*entity.InventoryItem  `json:"items"`
	Records  []*entity.MovementRecord `json:"records"`
	Catalog  []*entity.CatalogProduct `json:"catalog"`
	Batches  []*entity.InventoryBatch `json:"batches"`
	Balances []*entity.StockBalance   `json:"balances"`
}

// Backend é o cliente do backend remoto. Erro de transporte ≠ erro de
// operação: BatchRequest só retorna erro quando o lote inteiro não chegou;
// falhas individuais vêm em BatchResult.
type Backend interface {
	Ping(ctx context.Context) error
	ReadFullDB(ctx context.Context) (*FullPayload, error)
	BatchRequest(ctx context.Context, items []BatchItem) ([]BatchResult, error)
}
