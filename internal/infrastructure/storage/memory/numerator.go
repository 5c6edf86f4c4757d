package memory

import (
	"context"
	"time"

	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/numerator"
)

var _ numerator.Generator = (*Numerator)(nil)

// Numerator keeps sequences in the store so they commit and roll back
// with the voucher that consumed them.
type Numerator struct {
	store *Store
}

func (n *Numerator) Next(ctx context.Context, companyID id.ID, cfg numerator.Config, period time.Time) (string, error) {
	key := numerator.Key(companyID, cfg, period)
	var value int64
	err := n.store.write(ctx, func(st *state) error {
		st.sequences[key]++
		value = st.sequences[key]
		return nil
	})
	if err != nil {
		return "", err
	}
	return numerator.Format(cfg, period, value), nil
}

func (n *Numerator) SetNext(ctx context.Context, companyID id.ID, cfg numerator.Config, period time.Time, value int64) error {
	key := numerator.Key(companyID, cfg, period)
	return n.store.write(ctx, func(st *state) error {
		st.sequences[key] = value
		return nil
	})
}
