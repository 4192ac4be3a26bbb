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

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo implementação de CatalogRepository sobre PostgreSQL (usável com pool ou tx).
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

const catalogColumns = `id, sap_code, name, category, base_unit, cas_number, chemical_formula, molecular_mass, hazard_risks, controlled, min_stock, created_at, updated_at`

func scanCatalog(row pgx.Row) (*entity.CatalogProduct, error) {
	var p entity.CatalogProduct
	err := row.Scan(
		&p.ID, &p.SapCode, &p.Name, &p.Category, &p.BaseUnit, &p.CasNumber,
		&p.ChemicalFormula, &p.MolecularMass, &p.HazardRisks, &p.Controlled,
		&p.MinStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtém um produto de catálogo por ID. Devolve nil, nil se não existir.
func (r *CatalogRepo) GetByID(ctx context.Context, id string) (*entity.CatalogProduct, error) {
	p, err := scanCatalog(r.q.QueryRow(ctx,
		`SELECT `+catalogColumns+` FROM catalog_products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get catalog product: %w", err)
	}
	return p, nil
}

// Upsert insere ou atualiza os campos descritivos (identidade é imutável).
func (r *CatalogRepo) Upsert(ctx context.Context, p *entity.CatalogProduct) error {
	query := `
		INSERT INTO catalog_products (` + catalogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, category = EXCLUDED.category, base_unit = EXCLUDED.base_unit,
			cas_number = EXCLUDED.cas_number, chemical_formula = EXCLUDED.chemical_formula,
			molecular_mass = EXCLUDED.molecular_mass, hazard_risks = EXCLUDED.hazard_risks,
			controlled = EXCLUDED.controlled, min_stock = EXCLUDED.min_stock, updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SapCode, p.Name, p.Category, p.BaseUnit, p.CasNumber,
		p.ChemicalFormula, p.MolecularMass, p.HazardRisks, p.Controlled,
		p.MinStock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert catalog product: %w", err)
	}
	return nil
}

// BulkUpsert aplica Upsert a vários produtos (mesma tx do caller).
func (r *CatalogRepo) BulkUpsert(ctx context.Context, ps []*entity.CatalogProduct) error {
	for _, p := range ps {
		if err := r.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Delete remove um produto. Se algum lote o referencia, o banco recusa
// (FK RESTRICT) e devolvemos ErrIntegrity.
func (r *CatalogRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM catalog_products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrIntegrity
		}
		return fmt.Errorf("delete catalog product: %w", err)
	}
	return nil
}

// List devolve todos os produtos de catálogo.
func (r *CatalogRepo) List(ctx context.Context) ([]*entity.CatalogProduct, error) {
	rows, err := r.q.Query(ctx, `SELECT `+catalogColumns+` FROM catalog_products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list catalog products: %w", err)
	}
	defer rows.Close()
	var out []*entity.CatalogProduct
	for rows.Next() {
		p, err := scanCatalog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Clear esvazia a tabela (modo replace da importação).
func (r *CatalogRepo) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM catalog_products`); err != nil {
		return fmt.Errorf("clear catalog products: %w", err)
	}
	return nil
}
