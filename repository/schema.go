package repository

import "ar-model-dashboard/db"

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS variant_states (
		id BIGSERIAL PRIMARY KEY,
		variant_id INTEGER UNIQUE NOT NULL,
		group_id INTEGER NOT NULL,
		ios_asset_url TEXT,
		android_asset_url TEXT,
		human_verified BOOLEAN NOT NULL DEFAULT FALSE,
		manual_incorrect BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	// Older deployments created the table before manual_incorrect existed
	`ALTER TABLE IF EXISTS variant_states
		ADD COLUMN IF NOT EXISTS manual_incorrect BOOLEAN NOT NULL DEFAULT FALSE`,
	`CREATE INDEX IF NOT EXISTS idx_variant_states_variant_id ON variant_states(variant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_variant_states_group_id ON variant_states(group_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS variant_states (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		variant_id INTEGER UNIQUE NOT NULL,
		group_id INTEGER NOT NULL,
		ios_asset_url TEXT,
		android_asset_url TEXT,
		human_verified BOOLEAN NOT NULL DEFAULT FALSE,
		manual_incorrect BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_variant_states_variant_id ON variant_states(variant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_variant_states_group_id ON variant_states(group_id)`,
}

// schemaStatements returns the idempotent DDL for dialect
func schemaStatements(dialect db.Dialect) []string {
	if dialect == db.SQLite {
		return sqliteSchema
	}
	return postgresSchema
}
