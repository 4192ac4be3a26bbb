package repository

import (
	"context"

	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
)

// ItemRepository acesso ao snapshot desnormalizado InventoryItem (V1).
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetByBatch(ctx context.Context, batchID string) (*entity.InventoryItem, error)
	Upsert(ctx context.Context, it *entity.InventoryItem) error
	BulkUpsert(ctx context.Context, its []*entity.InventoryItem) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.InventoryItem, error)
	// Stream percorre todos os itens sem materializar a tabela inteira.
	Stream(ctx context.Context, fn func(it *entity.InventoryItem) error) error
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}

// RecordRepository acesso ao snapshot de histórico MovementRecord (V1).
type RecordRepository interface {
	Create(ctx context.Context, r *entity.MovementRecord) error
	BulkUpsert(ctx context.Context, rs []*entity.MovementRecord) error
	ListByItem(ctx context.Context, itemID string) ([]*entity.MovementRecord, error)
	List(ctx context.Context, limit int) ([]*entity.MovementRecord, error)
	Clear(ctx context.Context) error
}
