package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema statements for the insight record store, applied in order.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS business_insights (
	id            UUID PRIMARY KEY,
	user_id       TEXT NOT NULL,
	business_name TEXT NOT NULL,
	insights      JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_business_insights_lookup
	ON business_insights (user_id, business_name, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_business_insights_created_at
	ON business_insights (created_at DESC)`,
}

// ApplySchema runs every Schema statement inside one transaction.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range Schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
