package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementação de BalanceRepository sobre PostgreSQL.
// StockBalance é o único registro autoritativo de quantidade.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtém o balance de um par (lote, local). Devolve balance zerado se não existir.
func (r *BalanceRepo) Get(ctx context.Context, batchID, locationID string) (*entity.StockBalance, error) {
	return r.get(ctx, batchID, locationID, false)
}

// GetForUpdate obtém o balance bloqueando a linha (SELECT FOR UPDATE).
func (r *BalanceRepo) GetForUpdate(ctx context.Context, batchID, locationID string) (*entity.StockBalance, error) {
	return r.get(ctx, batchID, locationID, true)
}

func (r *BalanceRepo) get(ctx context.Context, batchID, locationID string, forUpdate bool) (*entity.StockBalance, error) {
	query := `
		SELECT batch_id, location_id, quantity, last_movement_at
		FROM stock_balances WHERE batch_id = $1 AND location_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, batchID, locationID).Scan(
		&b.BatchID, &b.LocationID, &b.Quantity, &b.LastMovementAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{BatchID: batchID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// Upsert insere ou atualiza a quantidade do par (lote, local).
func (r *BalanceRepo) Upsert(ctx context.Context, b *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (batch_id, location_id, quantity, last_movement_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (batch_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, last_movement_at = now()`
	_, err := r.q.Exec(ctx, query, b.BatchID, b.LocationID, b.Quantity)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrIntegrity
		}
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// BulkUpsert aplica Upsert a vários balances.
func (r *BalanceRepo) BulkUpsert(ctx context.Context, bs []*entity.StockBalance) error {
	for _, b := range bs {
		if err := r.Upsert(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// ListByBatch devolve todos os balances de um lote.
func (r *BalanceRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT batch_id, location_id, quantity, last_movement_at
		FROM stock_balances WHERE batch_id = $1`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.BatchID, &b.LocationID, &b.Quantity, &b.LastMovementAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// StreamSums agrega a soma das quantidades por lote direto no banco e entrega
// cada par ao callback. Limita a memória ao número de lotes distintos, nunca
// ao número de balances.
func (r *BalanceRepo) StreamSums(ctx context.Context, fn func(batchID string, sum decimal.Decimal) error) error {
	rows, err := r.q.Query(ctx, `
		SELECT batch_id, SUM(quantity) FROM stock_balances GROUP BY batch_id`)
	if err != nil {
		return fmt.Errorf("stream balance sums: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var batchID string
		var sum decimal.Decimal
		if err := rows.Scan(&batchID, &sum); err != nil {
			return fmt.Errorf("scan balance sum: %w", err)
		}
		if err := fn(batchID, sum); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Clear esvazia a tabela (modo replace da importação).
func (r *BalanceRepo) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_balances`); err != nil {
		return fmt.Errorf("clear balances: %w", err)
	}
	return nil
}
