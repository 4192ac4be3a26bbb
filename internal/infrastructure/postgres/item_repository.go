package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementação de ItemRepository (snapshot V1) sobre PostgreSQL.
type ItemRepo struct {
	q Querier
}

// NewItemRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, catalog_id, batch_id, location_id, sap_code, name, lot, category, unit,
	quantity, min_quantity, location, supplier, expiry_date, status, cas_number,
	chemical_formula, molecular_mass, hazard_risks, controlled, updated_at`

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(
		&it.ID, &it.CatalogID, &it.BatchID, &it.LocationID, &it.SapCode, &it.Name, &it.Lot,
		&it.Category, &it.Unit, &it.Quantity, &it.MinQuantity, &it.Location, &it.Supplier,
		&it.ExpiryDate, &it.Status, &it.CasNumber, &it.ChemicalFormula, &it.MolecularMass,
		&it.HazardRisks, &it.Controlled, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// GetByID obtém um item por ID. Devolve nil, nil se não existir.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// GetByBatch obtém o item de snapshot que referencia um lote do ledger.
func (r *ItemRepo) GetByBatch(ctx context.Context, batchID string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE batch_id = $1 LIMIT 1`, batchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item by batch: %w", err)
	}
	return it, nil
}

// Upsert insere ou atualiza um item de snapshot.
func (r *ItemRepo) Upsert(ctx context.Context, it *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO UPDATE SET
			catalog_id = EXCLUDED.catalog_id, batch_id = EXCLUDED.batch_id,
			location_id = EXCLUDED.location_id, sap_code = EXCLUDED.sap_code,
			name = EXCLUDED.name, lot = EXCLUDED.lot, category = EXCLUDED.category,
			unit = EXCLUDED.unit, quantity = EXCLUDED.quantity, min_quantity = EXCLUDED.min_quantity,
			location = EXCLUDED.location, supplier = EXCLUDED.supplier,
			expiry_date = EXCLUDED.expiry_date, status = EXCLUDED.status,
			cas_number = EXCLUDED.cas_number, chemical_formula = EXCLUDED.chemical_formula,
			molecular_mass = EXCLUDED.molecular_mass, hazard_risks = EXCLUDED.hazard_risks,
			controlled = EXCLUDED.controlled, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.CatalogID, it.BatchID, it.LocationID, it.SapCode, it.Name, it.Lot,
		it.Category, it.Unit, it.Quantity, it.MinQuantity, it.Location, it.Supplier,
		it.ExpiryDate, it.Status, it.CasNumber, it.ChemicalFormula, it.MolecularMass,
		it.HazardRisks, it.Controlled, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

// BulkUpsert aplica Upsert a vários itens (correções do auditor, importação).
func (r *ItemRepo) BulkUpsert(ctx context.Context, its []*entity.InventoryItem) error {
	for _, it := range its {
		if err := r.Upsert(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

// Delete remove um item do snapshot.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// List devolve todos os itens do snapshot.
func (r *ItemRepo) List(ctx context.Context) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	err := r.Stream(ctx, func(it *entity.InventoryItem) error {
		out = append(out, it)
		return nil
	})
	return out, err
}

// Stream percorre todos os itens entregando um a um ao callback.
func (r *ItemRepo) Stream(ctx context.Context, fn func(it *entity.InventoryItem) error) error {
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY name`)
	if err != nil {
		return fmt.Errorf("stream items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		if err := fn(it); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count devolve o total de itens.
func (r *ItemRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// Clear esvazia a tabela (modo replace da importação).
func (r *ItemRepo) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	return nil
}
