package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"ledgerbook/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates missing tables and indexes.
func Migrate(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "schema applied")
	return nil
}
