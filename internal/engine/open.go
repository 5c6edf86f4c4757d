package engine

import (
	"context"
	"fmt"

	"ledgerbook/internal/config"
	"ledgerbook/internal/infrastructure/storage/memory"
	"ledgerbook/internal/infrastructure/storage/postgres"
)

// Runtime is an engine bound to its storage resources.
type Runtime struct {
	*Engine

	// Pool is nil for memory storage.
	Pool *postgres.Pool
}

// Open builds the engine over the storage cfg selects.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	engineCfg := Config{ImportMaxBytes: cfg.ImportMaxBytes}

	if cfg.Storage == config.StorageMemory {
		return &Runtime{Engine: New(MemoryBackend(memory.New()), engineCfg)}, nil
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Runtime{
		Engine: New(PostgresBackend(postgres.NewStore(pool)), engineCfg),
		Pool:   pool,
	}, nil
}

// Migrate applies the schema; it is a no-op for memory storage.
func (r *Runtime) Migrate(ctx context.Context) error {
	if r.Pool == nil {
		return nil
	}
	return postgres.Migrate(ctx, r.Pool)
}

// Close releases the storage.
func (r *Runtime) Close() {
	if r.Pool != nil {
		r.Pool.Close()
	}
}
