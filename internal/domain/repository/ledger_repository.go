package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
)

// CatalogRepository acesso a CatalogProduct (ledger V2).
type CatalogRepository interface {
	GetByID(ctx context.Context, id string) (*entity.CatalogProduct, error)
	Upsert(ctx context.Context, p *entity.CatalogProduct) error
	BulkUpsert(ctx context.Context, ps []*entity.CatalogProduct) error
	Delete(ctx context.Context, id string) error // ErrIntegrity se houver lote referenciando
	List(ctx context.Context) ([]*entity.CatalogProduct, error)
	Clear(ctx context.Context) error
}

// BatchRepository acesso a InventoryBatch.
type BatchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryBatch, error)
	Upsert(ctx context.Context, b *entity.InventoryBatch) error
	BulkUpsert(ctx context.Context, bs []*entity.InventoryBatch) error
	Delete(ctx context.Context, id string) error // cascata remove os balances
	List(ctx context.Context) ([]*entity.InventoryBatch, error)
	Clear(ctx context.Context) error
}

// LocationRepository acesso a StorageLocation.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.StorageLocation, error)
	Upsert(ctx context.Context, l *entity.StorageLocation) error
	BulkUpsert(ctx context.Context, ls []*entity.StorageLocation) error
	List(ctx context.Context) ([]*entity.StorageLocation, error)
	Clear(ctx context.Context) error
}

// PartnerRepository acesso a BusinessPartner.
type PartnerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.BusinessPartner, error)
	Upsert(ctx context.Context, p *entity.BusinessPartner) error
	BulkUpsert(ctx context.Context, ps []*entity.BusinessPartner) error
	List(ctx context.Context) ([]*entity.BusinessPartner, error)
	Clear(ctx context.Context) error
}

// BalanceRepository acesso a StockBalance, chaveado pelo par (batchID, locationID).
type BalanceRepository interface {
	Get(ctx context.Context, batchID, locationID string) (*entity.StockBalance, error)
	// GetForUpdate bloqueia a linha (SELECT FOR UPDATE); devolve balance zerado se não existir.
	GetForUpdate(ctx context.Context, batchID, locationID string) (*entity.StockBalance, error)
	Upsert(ctx context.Context, b *entity.StockBalance) error
	BulkUpsert(ctx context.Context, bs []*entity.StockBalance) error
	ListByBatch(ctx context.Context, batchID string) ([]*entity.StockBalance, error)
	// StreamSums percorre todos os balances acumulando soma por batchID,
	// entregando cada par ao callback (streaming, sem materializar a tabela).
	StreamSums(ctx context.Context, fn func(batchID string, sum decimal.Decimal) error) error
	Clear(ctx context.Context) error
}

// StockMovementRepository acesso ao ledger de movimentações (append-only).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByBatch(ctx context.Context, batchID string) ([]*entity.StockMovement, error)
	Clear(ctx context.Context) error
}
