package postgres

import (
	"context"
	"fmt"

	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

var _ repository.RecordRepository = (*RecordRepo)(nil)

// RecordRepo implementação de RecordRepository (histórico desnormalizado V1).
type RecordRepo struct {
	q Querier
}

// NewRecordRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewRecordRepository(q Querier) *RecordRepo {
	return &RecordRepo{q: q}
}

const recordColumns = `id, item_id, movement_id, product_name, lot, type, quantity, from_location, to_location, performed_by, observation, date`

// Create persiste um registro de histórico.
func (r *RecordRepo) Create(ctx context.Context, rec *entity.MovementRecord) error {
	query := `
		INSERT INTO movement_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ItemID, rec.MovementID, rec.ProductName, rec.Lot, rec.Type,
		rec.Quantity, rec.FromLocation, rec.ToLocation, rec.PerformedBy, rec.Observation, rec.Date,
	)
	if err != nil {
		return fmt.Errorf("insert movement record: %w", err)
	}
	return nil
}

// BulkUpsert insere ou substitui vários registros (ingestão do sync remoto).
func (r *RecordRepo) BulkUpsert(ctx context.Context, rs []*entity.MovementRecord) error {
	query := `
		INSERT INTO movement_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`
	for _, rec := range rs {
		if _, err := r.q.Exec(ctx, query,
			rec.ID, rec.ItemID, rec.MovementID, rec.ProductName, rec.Lot, rec.Type,
			rec.Quantity, rec.FromLocation, rec.ToLocation, rec.PerformedBy, rec.Observation, rec.Date,
		); err != nil {
			return fmt.Errorf("bulk upsert movement record: %w", err)
		}
	}
	return nil
}

// ListByItem devolve o histórico de um item, mais recente primeiro.
func (r *RecordRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.MovementRecord, error) {
	return r.list(ctx, `SELECT `+recordColumns+` FROM movement_records WHERE item_id = $1 ORDER BY date DESC`, itemID)
}

// List devolve os registros mais recentes, limitados.
func (r *RecordRepo) List(ctx context.Context, limit int) ([]*entity.MovementRecord, error) {
	return r.list(ctx, `SELECT `+recordColumns+` FROM movement_records ORDER BY date DESC LIMIT $1`, limit)
}

func (r *RecordRepo) list(ctx context.Context, query string, args ...any) ([]*entity.MovementRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movement records: %w", err)
	}
	defer rows.Close()
	var out []*entity.MovementRecord
	for rows.Next() {
		var rec entity.MovementRecord
		if err := rows.Scan(&rec.ID, &rec.ItemID, &rec.MovementID, &rec.ProductName, &rec.Lot,
			&rec.Type, &rec.Quantity, &rec.FromLocation, &rec.ToLocation,
			&rec.PerformedBy, &rec.Observation, &rec.Date); err != nil {
			return nil, fmt.Errorf("scan movement record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Clear esvazia a tabela (modo replace da importação).
func (r *RecordRepo) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM movement_records`); err != nil {
		return fmt.Errorf("clear movement records: %w", err)
	}
	return nil
}
