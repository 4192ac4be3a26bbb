package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementação de LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// GetByID obtém um local por ID. Devolve nil, nil se não existir.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.StorageLocation, error) {
	var l entity.StorageLocation
	err := r.q.QueryRow(ctx,
		`SELECT id, warehouse, cabinet, shelf, position, created_at FROM storage_locations WHERE id = $1`, id,
	).Scan(&l.ID, &l.Warehouse, &l.Cabinet, &l.Shelf, &l.Position, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// Upsert insere ou atualiza um local.
func (r *LocationRepo) Upsert(ctx context.Context, l *entity.StorageLocation) error {
	query := `
		INSERT INTO storage_locations (id, warehouse, cabinet, shelf, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			warehouse = EXCLUDED.warehouse, cabinet = EXCLUDED.cabinet,
			shelf = EXCLUDED.shelf, position = EXCLUDED.position`
	_, err := r.q.Exec(ctx, query, l.ID, l.Warehouse, l.Cabinet, l.Shelf, l.Position, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert location: %w", err)
	}
	return nil
}

// BulkUpsert aplica Upsert a vários locais.
func (r *LocationRepo) BulkUpsert(ctx context.Context, ls []*entity.StorageLocation) error {
	for _, l := range ls {
		if err := r.Upsert(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// List devolve todos os locais.
func (r *LocationRepo) List(ctx context.Context) ([]*entity.StorageLocation, error) {
	rows, err := r.q.Query(ctx, `SELECT id, warehouse, cabinet, shelf, position, created_at FROM storage_locations ORDER BY warehouse, cabinet, shelf, position`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var out []*entity.StorageLocation
	for rows.Next() {
		var l entity.StorageLocation
		if err := rows.Scan(&l.ID, &l.Warehouse, &l.Cabinet, &l.Shelf, &l.Position, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// Clear esvazia a tabela (modo replace da importação).
func (r *LocationRepo) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM storage_locations`); err != nil {
		return fmt.Errorf("clear locations: %w", err)
	}
	return nil
}
