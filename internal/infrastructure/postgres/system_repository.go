package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

var _ repository.SystemLogRepository = (*SystemLogRepo)(nil)
var _ repository.ConfigRepository = (*ConfigRepo)(nil)

// SystemLogRepo registro append-only de eventos do sistema.
type SystemLogRepo struct {
	q Querier
}

// NewSystemLogRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewSystemLogRepository(q Querier) *SystemLogRepo {
	return &SystemLogRepo{q: q}
}

// Append acrescenta uma linha ao log do sistema.
func (r *SystemLogRepo) Append(ctx context.Context, level, event, detail string) error {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO system_log (level, event, detail) VALUES ($1, $2, $3)`,
		level, event, detail); err != nil {
		return fmt.Errorf("append system log: %w", err)
	}
	return nil
}

// ConfigRepo chave-valor de configuração do sistema.
type ConfigRepo struct {
	q Querier
}

// NewConfigRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewConfigRepository(q Querier) *ConfigRepo {
	return &ConfigRepo{q: q}
}

// Get devolve o valor de uma chave ("" se ausente).
func (r *ConfigRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.q.QueryRow(ctx, `SELECT value FROM system_config WHERE key = $1`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get config: %w", err)
	}
	return v, nil
}

// Set grava ou substitui o valor de uma chave.
func (r *ConfigRepo) Set(ctx context.Context, key, value string) error {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO system_config (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value); err != nil {
		return fmt.Errorf("set config: %w", err)
	}
	return nil
}
