package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner executa callbacks dentro de uma transação PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constrói o runner com o pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia uma transação, executa fn com repositórios atados à tx e faz
// Commit ou Rollback. Violações de integridade do banco chegam ao caller já
// traduzidas em domain.ErrIntegrity pelos repositórios.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := inventory.Repos{
		Catalog:   NewCatalogRepository(tx),
		Batches:   NewBatchRepository(tx),
		Locations: NewLocationRepository(tx),
		Partners:  NewPartnerRepository(tx),
		Balances:  NewBalanceRepository(tx),
		Movements: NewStockMovementRepository(tx),
		Items:     NewItemRepository(tx),
		Records:   NewRecordRepository(tx),
		Queue:     NewSyncQueueRepository(tx),
		Log:       NewSystemLogRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
