// Package numerator provides the contract for voucher auto-numbering.
// Implementations live in the infrastructure layer.
package numerator

//go:generate mockgen -source=generator.go -destination=mock_generator.go -package=numerator

import (
	"context"
	"time"

	"ledgerbook/internal/core/id"
)

// Generator hands out gap-free sequential numbers per company and sequence.
type Generator interface {
	// Next returns the next formatted number, e.g. SAL-2024-00001.
	Next(ctx context.Context, companyID id.ID, cfg Config, period time.Time) (string, error)

	// SetNext overrides the last issued value (used after an import).
	SetNext(ctx context.Context, companyID id.ID, cfg Config, period time.Time, value int64) error
}
