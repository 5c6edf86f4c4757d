// Package memory is an in-process implementation of the ledger's storage
// contracts. It backs STORAGE=memory deployments and the service tests.
//
// Transactions are serialized by a single writer lock. A write transaction
// works on a copy of the committed state and publishes it on success, so a
// failed unit of work leaves no trace and readers never see partial writes.
package memory

import (
	"context"
	"errors"
	"sync"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/tx"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/masters"
	"ledgerbook/internal/domain/postings"
	"ledgerbook/internal/domain/voucher"
)

// ErrReadOnly is returned for writes attempted inside ReadOnly.
var ErrReadOnly = errors.New("memory: write in read-only transaction")

type storedVoucher struct {
	v   entity.Voucher
	seq int64
}

type state struct {
	companies   map[id.ID]entity.Company
	groups      map[id.ID]entity.Group
	ledgers     map[id.ID]entity.Ledger
	stockGroups map[id.ID]entity.StockGroup
	units       map[id.ID]entity.Unit
	stockItems  map[id.ID]entity.StockItem
	vouchers    map[id.ID]storedVoucher
	sequences   map[string]int64
	seq         int64
}

func newState() *state {
	return &state{
		companies:   map[id.ID]entity.Company{},
		groups:      map[id.ID]entity.Group{},
		ledgers:     map[id.ID]entity.Ledger{},
		stockGroups: map[id.ID]entity.StockGroup{},
		units:       map[id.ID]entity.Unit{},
		stockItems:  map[id.ID]entity.StockItem{},
		vouchers:    map[id.ID]storedVoucher{},
		sequences:   map[string]int64{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies the tables. Stored values are replaced, never mutated, so a
// shallow copy per table is enough.
func (st *state) clone() *state {
	return &state{
		companies:   cloneMap(st.companies),
		groups:      cloneMap(st.groups),
		ledgers:     cloneMap(st.ledgers),
		stockGroups: cloneMap(st.stockGroups),
		units:       cloneMap(st.units),
		stockItems:  cloneMap(st.stockItems),
		vouchers:    cloneMap(st.vouchers),
		sequences:   cloneMap(st.sequences),
		seq:         st.seq,
	}
}

type txKey struct{}

type txState struct {
	owner    *Store
	st       *state
	readOnly bool
}

// Store holds every table of every company.
type Store struct {
	writeMu sync.Mutex

	mu        sync.RWMutex
	committed *state

	groups      *masterRepo[entity.Group, *entity.Group]
	ledgers     *masterRepo[entity.Ledger, *entity.Ledger]
	stockGroups *masterRepo[entity.StockGroup, *entity.StockGroup]
	units       *masterRepo[entity.Unit, *entity.Unit]
	stockItems  *masterRepo[entity.StockItem, *entity.StockItem]
}

// Compile-time interface checks.
var (
	_ tx.Manager              = (*Store)(nil)
	_ masters.Store           = (*Store)(nil)
	_ postings.Repository     = (*Postings)(nil)
	_ voucher.Repository      = (*Vouchers)(nil)
	_ masters.UsageRepository = (*usage)(nil)
)

// New creates an empty store.
func New() *Store {
	s := &Store{committed: newState()}
	s.groups = &masterRepo[entity.Group, *entity.Group]{store: s, entity: "group", field: "name",
		table: func(st *state) map[id.ID]entity.Group { return st.groups }}
	s.ledgers = &masterRepo[entity.Ledger, *entity.Ledger]{store: s, entity: "ledger", field: "name",
		table: func(st *state) map[id.ID]entity.Ledger { return st.ledgers }}
	s.stockGroups = &masterRepo[entity.StockGroup, *entity.StockGroup]{store: s, entity: "stock group", field: "name",
		table: func(st *state) map[id.ID]entity.StockGroup { return st.stockGroups }}
	s.units = &masterRepo[entity.Unit, *entity.Unit]{store: s, entity: "unit", field: "symbol",
		table: func(st *state) map[id.ID]entity.Unit { return st.units }}
	s.stockItems = &masterRepo[entity.StockItem, *entity.StockItem]{store: s, entity: "stock item", field: "name",
		table: func(st *state) map[id.ID]entity.StockItem { return st.stockItems }}
	return s
}

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if cur, ok := ctx.Value(txKey{}).(*txState); ok && cur.owner == s {
		if cur.readOnly {
			return ErrReadOnly
		}
		return fn(ctx)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, &txState{owner: s, st: work})); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

// ReadOnly implements tx.Manager.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if cur, ok := ctx.Value(txKey{}).(*txState); ok && cur.owner == s {
		return fn(ctx)
	}
	return fn(context.WithValue(ctx, txKey{}, &txState{owner: s, st: s.snapshot(), readOnly: true}))
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}

// read runs fn against the transaction state in ctx or the latest commit.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if cur, ok := ctx.Value(txKey{}).(*txState); ok && cur.owner == s {
		return fn(cur.st)
	}
	return fn(s.snapshot())
}

// write runs fn inside the current transaction or an implicit one.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		cur := ctx.Value(txKey{}).(*txState)
		return fn(cur.st)
	})
}

// Companies implements masters.Store.
func (s *Store) Companies() masters.CompanyRepository { return &companies{store: s} }

// Groups implements masters.Store.
func (s *Store) Groups() domain.MasterRepository[*entity.Group] { return s.groups }

// Ledgers implements masters.Store.
func (s *Store) Ledgers() domain.MasterRepository[*entity.Ledger] { return s.ledgers }

// StockGroups implements masters.Store.
func (s *Store) StockGroups() domain.MasterRepository[*entity.StockGroup] { return s.stockGroups }

// Units implements masters.Store.
func (s *Store) Units() domain.MasterRepository[*entity.Unit] { return s.units }

// StockItems implements masters.Store.
func (s *Store) StockItems() domain.MasterRepository[*entity.StockItem] { return s.stockItems }

// Usage implements masters.Store.
func (s *Store) Usage() masters.UsageRepository { return &usage{store: s} }

// Vouchers returns the voucher repository.
func (s *Store) Vouchers() *Vouchers { return &Vouchers{store: s} }

// Postings returns the approved-movement read model.
func (s *Store) Postings() *Postings { return &Postings{store: s} }

// Numerator returns a voucher number generator whose sequences roll back
// with the surrounding transaction.
func (s *Store) Numerator() *Numerator { return &Numerator{store: s} }
