package postgres

import (
	"context"
	"fmt"

	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementação de StockMovementRepository sobre PostgreSQL.
// O ledger é append-only: só há Create; nenhum UPDATE ou DELETE individual.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste um lançamento do ledger.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, batch_id, type, quantity, from_location_id, to_location_id, performed_by, observation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.BatchID, m.Type, m.Quantity, m.FromLocationID, m.ToLocationID,
		m.PerformedBy, m.Observation, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByBatch devolve os lançamentos de um lote em ordem cronológica.
func (r *StockMovementRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, batch_id, type, quantity, from_location_id, to_location_id, performed_by, observation, created_at
		FROM stock_movements WHERE batch_id = $1 ORDER BY created_at`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.BatchID, &m.Type, &m.Quantity, &m.FromLocationID,
			&m.ToLocationID, &m.PerformedBy, &m.Observation, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Clear esvazia a tabela. Usado somente pelo modo replace da importação.
func (r *StockMovementRepo) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_movements`); err != nil {
		return fmt.Errorf("clear stock movements: %w", err)
	}
	return nil
}
