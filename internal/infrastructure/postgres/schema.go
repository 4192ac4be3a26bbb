package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema cria as tabelas se não existirem. Migrações são aditivas:
// nunca alteramos colunas existentes, apenas acrescentamos.
//
// Ganchos de integridade referencial:
//   - inventory_batches.catalog_id  -> RESTRICT: catálogo referenciado não pode ser removido
//   - stock_balances.batch_id       -> CASCADE: remover o lote remove seus balances
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS catalog_products (
			id               TEXT PRIMARY KEY,
			sap_code         TEXT NOT NULL,
			name             TEXT NOT NULL,
			category         TEXT NOT NULL DEFAULT '',
			base_unit        TEXT NOT NULL DEFAULT 'un',
			cas_number       TEXT NOT NULL DEFAULT '',
			chemical_formula TEXT NOT NULL DEFAULT '',
			molecular_mass   TEXT NOT NULL DEFAULT '',
			hazard_risks     TEXT[] NOT NULL DEFAULT '{}',
			controlled       BOOLEAN NOT NULL DEFAULT FALSE,
			min_stock        NUMERIC(20,3) NOT NULL DEFAULT 0,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_sap ON catalog_products (sap_code)`,

		`CREATE TABLE IF NOT EXISTS business_partners (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			normalized_name TEXT NOT NULL,
			kind            TEXT NOT NULL DEFAULT 'SUPPLIER',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_partner_norm ON business_partners (normalized_name)`,

		`CREATE TABLE IF NOT EXISTS storage_locations (
			id         TEXT PRIMARY KEY,
			warehouse  TEXT NOT NULL DEFAULT '',
			cabinet    TEXT NOT NULL DEFAULT '',
			shelf      TEXT NOT NULL DEFAULT '',
			position   TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS inventory_batches (
			id          TEXT PRIMARY KEY,
			catalog_id  TEXT NOT NULL REFERENCES catalog_products(id) ON DELETE RESTRICT,
			lot         TEXT NOT NULL DEFAULT '',
			partner_id  TEXT,
			expiry_date TIMESTAMPTZ,
			unit_cost   NUMERIC(20,4) NOT NULL DEFAULT 0,
			status      TEXT NOT NULL DEFAULT 'ACTIVE',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batch_catalog ON inventory_batches (catalog_id)`,

		`CREATE TABLE IF NOT EXISTS stock_balances (
			batch_id         TEXT NOT NULL REFERENCES inventory_batches(id) ON DELETE CASCADE,
			location_id      TEXT NOT NULL,
			quantity         NUMERIC(20,3) NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			last_movement_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (batch_id, location_id)
		)`,

		`CREATE TABLE IF NOT EXISTS stock_movements (
			id               TEXT PRIMARY KEY,
			batch_id         TEXT NOT NULL,
			type             TEXT NOT NULL,
			quantity         NUMERIC(20,3) NOT NULL,
			from_location_id TEXT NOT NULL DEFAULT '',
			to_location_id   TEXT NOT NULL DEFAULT '',
			performed_by     TEXT NOT NULL DEFAULT '',
			observation      TEXT NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movement_batch ON stock_movements (batch_id)`,

		`CREATE TABLE IF NOT EXISTS inventory_items (
			id               TEXT PRIMARY KEY,
			catalog_id       TEXT NOT NULL DEFAULT '',
			batch_id         TEXT NOT NULL DEFAULT '',
			location_id      TEXT NOT NULL DEFAULT '',
			sap_code         TEXT NOT NULL DEFAULT '',
			name             TEXT NOT NULL,
			lot              TEXT NOT NULL DEFAULT '',
			category         TEXT NOT NULL DEFAULT '',
			unit             TEXT NOT NULL DEFAULT 'un',
			quantity         NUMERIC(20,3) NOT NULL DEFAULT 0,
			min_quantity     NUMERIC(20,3) NOT NULL DEFAULT 0,
			location         TEXT NOT NULL DEFAULT '',
			supplier         TEXT NOT NULL DEFAULT '',
			expiry_date      TIMESTAMPTZ,
			status           TEXT NOT NULL DEFAULT 'ACTIVE',
			cas_number       TEXT NOT NULL DEFAULT '',
			chemical_formula TEXT NOT NULL DEFAULT '',
			molecular_mass   TEXT NOT NULL DEFAULT '',
			hazard_risks     TEXT[] NOT NULL DEFAULT '{}',
			controlled       BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_item_sap ON inventory_items (sap_code)`,
		`CREATE INDEX IF NOT EXISTS idx_item_lot ON inventory_items (lot)`,
		`CREATE INDEX IF NOT EXISTS idx_item_name ON inventory_items (name)`,
		`CREATE INDEX IF NOT EXISTS idx_item_category ON inventory_items (category)`,
		`CREATE INDEX IF NOT EXISTS idx_item_supplier ON inventory_items (supplier)`,
		`CREATE INDEX IF NOT EXISTS idx_item_expiry ON inventory_items (expiry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_item_status ON inventory_items (status)`,
		`CREATE INDEX IF NOT EXISTS idx_item_batch ON inventory_items (batch_id)`,

		`CREATE TABLE IF NOT EXISTS movement_records (
			id            TEXT PRIMARY KEY,
			item_id       TEXT NOT NULL DEFAULT '',
			movement_id   TEXT NOT NULL DEFAULT '',
			product_name  TEXT NOT NULL DEFAULT '',
			lot           TEXT NOT NULL DEFAULT '',
			type          TEXT NOT NULL,
			quantity      NUMERIC(20,3) NOT NULL,
			from_location TEXT NOT NULL DEFAULT '',
			to_location   TEXT NOT NULL DEFAULT '',
			performed_by  TEXT NOT NULL DEFAULT '',
			observation   TEXT NOT NULL DEFAULT '',
			date          TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_record_item ON movement_records (item_id)`,

		`CREATE TABLE IF NOT EXISTS sync_queue (
			id          BIGSERIAL PRIMARY KEY,
			action      TEXT NOT NULL,
			payload     JSONB NOT NULL,
			retry_count INT NOT NULL DEFAULT 0,
			last_error  TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS system_config (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS system_log (
			id         BIGSERIAL PRIMARY KEY,
			level      TEXT NOT NULL,
			event      TEXT NOT NULL,
			detail     TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'consulta',
			status        TEXT NOT NULL DEFAULT 'active',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
