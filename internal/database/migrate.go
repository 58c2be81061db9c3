package database

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate creates the tables for the handle's dialect. Every statement is
// idempotent so it is safe to run on each start.
func Migrate(ctx context.Context, db *DB) error {
	raw, err := schemaFS.ReadFile("schema/" + string(db.Dialect) + ".sql")
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
