package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementação de BatchRepository sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, catalog_id, lot, COALESCE(partner_id, ''), expiry_date, unit_cost, status, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.InventoryBatch, error) {
	var b entity.InventoryBatch
	err := row.Scan(
		&b.ID, &b.CatalogID, &b.Lot, &b.PartnerID, &b.ExpiryDate,
		&b.UnitCost, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID obtém um lote por ID. Devolve nil, nil se não existir.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.InventoryBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx,
		`SELECT `+batchColumns+` FROM inventory_batches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Upsert insere ou atualiza um lote. CatalogID inexistente viola a FK e
// devolve ErrIntegrity.
func (r *BatchRepo) Upsert(ctx context.Context, b *entity.InventoryBatch) error {
	query := `
		INSERT INTO inventory_batches (id, catalog_id, lot, partner_id, expiry_date, unit_cost, status, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			partner_id = NULLIF(EXCLUDED.partner_id, ''), expiry_date = EXCLUDED.expiry_date,
			unit_cost = EXCLUDED.unit_cost, status = EXCLUDED.status, updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.CatalogID, b.Lot, b.PartnerID, b.ExpiryDate, b.UnitCost, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrIntegrity
		}
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// BulkUpsert aplica Upsert a vários lotes.
func (r *BatchRepo) BulkUpsert(ctx context.Context, bs []*entity.InventoryBatch) error {
	for _, b := range bs {
		if err := r.Upsert(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// Delete remove um lote; o banco remove os balances em cascata.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_batches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

// List devolve todos os lotes.
func (r *BatchRepo) List(ctx context.Context) ([]*entity.InventoryBatch, error) {
	rows, err := r.q.Query(ctx, `SELECT `+batchColumns+` FROM inventory_batches ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var out []*entity.InventoryBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Clear esvazia a tabela (modo replace da importação).
func (r *BatchRepo) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_batches`); err != nil {
		return fmt.Errorf("clear batches: %w", err)
	}
	return nil
}
