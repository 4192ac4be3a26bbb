package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

var _ repository.PartnerRepository = (*PartnerRepo)(nil)

// PartnerRepo implementação de PartnerRepository sobre PostgreSQL.
type PartnerRepo struct {
	q Querier
}

// NewPartnerRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewPartnerRepository(q Querier) *PartnerRepo {
	return &PartnerRepo{q: q}
}

// GetByID obtém um parceiro por ID. Devolve nil, nil se não existir.
func (r *PartnerRepo) GetByID(ctx context.Context, id string) (*entity.BusinessPartner, error) {
	var p entity.BusinessPartner
	err := r.q.QueryRow(ctx,
		`SELECT id, name, normalized_name, kind, created_at FROM business_partners WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.NormalizedName, &p.Kind, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return &p, nil
}

// Upsert insere ou atualiza um parceiro. O nome normalizado é único: a mesma
// contraparte reimportada colide aqui e é deduplicada.
func (r *PartnerRepo) Upsert(ctx context.Context, p *entity.BusinessPartner) error {
	query := `
		INSERT INTO business_partners (id, name, normalized_name, kind, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (normalized_name) DO UPDATE SET name = EXCLUDED.name`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.NormalizedName, p.Kind, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert partner: %w", err)
	}
	return nil
}

// BulkUpsert aplica Upsert a vários parceiros.
func (r *PartnerRepo) BulkUpsert(ctx context.Context, ps []*entity.BusinessPartner) error {
	for _, p := range ps {
		if err := r.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// List devolve todos os parceiros.
func (r *PartnerRepo) List(ctx context.Context) ([]*entity.BusinessPartner, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, normalized_name, kind, created_at FROM business_partners ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()
	var out []*entity.BusinessPartner
	for rows.Next() {
		var p entity.BusinessPartner
		if err := rows.Scan(&p.ID, &p.Name, &p.NormalizedName, &p.Kind, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Clear esvazia a tabela (modo replace da importação).
func (r *PartnerRepo) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM business_partners`); err != nil {
		return fmt.Errorf("clear partners: %w", err)
	}
	return nil
}
