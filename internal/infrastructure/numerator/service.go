// Package numerator hands out voucher numbers from the sys_sequences table.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ledgerbook/internal/core/id"
	corenumerator "ledgerbook/internal/core/numerator"
)

// Querier runs a single-row statement.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ corenumerator.Generator = (*Service)(nil)

// Service increments sequences with an upsert. Called inside the voucher's
// transaction, the row stays locked until commit and a rollback returns the
// number, so numbering is gap-free.
type Service struct {
	querier func(ctx context.Context) Querier
}

// New creates a numerator. querier resolves the transaction in ctx.
func New(querier func(ctx context.Context) Querier) *Service {
	return &Service{querier: querier}
}

const nextSQL = `
	INSERT INTO sys_sequences (key, current_val)
	VALUES ($1, 1)
	ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
	RETURNING current_val`

const setSQL = `
	INSERT INTO sys_sequences (key, current_val)
	VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET current_val = $2`

// Next returns the next number, e.g. SAL-2024-00001.
func (s *Service) Next(ctx context.Context, companyID id.ID, cfg corenumerator.Config, period time.Time) (string, error) {
	key := corenumerator.Key(companyID, cfg, period)
	var num int64
	if err := s.querier(ctx).QueryRow(ctx, nextSQL, key).Scan(&num); err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}
	return corenumerator.Format(cfg, period, num), nil
}

// SetNext stores value as the last issued number.
func (s *Service) SetNext(ctx context.Context, companyID id.ID, cfg corenumerator.Config, period time.Time, value int64) error {
	key := corenumerator.Key(companyID, cfg, period)
	var ignored int64
	err := s.querier(ctx).QueryRow(ctx, setSQL+" RETURNING current_val", key, value).Scan(&ignored)
	if err != nil {
		return fmt.Errorf("set number for %s: %w", key, err)
	}
	return nil
}
