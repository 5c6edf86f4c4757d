// Package domain provides the shared repository contracts and the generic
// master-data service used by the ledger's domain packages.
package domain

import (
	"context"
	"time"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	CompanyID id.ID

	// Search matches the name (or unit symbol) case-insensitively
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter(companyID id.ID) ListFilter {
	return ListFilter{
		CompanyID: companyID,
		Limit:     100,
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Period is an inclusive date range. Nil bounds are unbounded.
type Period struct {
	From *time.Time
	To   *time.Time
}

// Unbounded covers the whole history.
func Unbounded() Period {
	return Period{}
}

// Through covers every date up to and including to.
func Through(to time.Time) Period {
	t := entity.DateOnly(to)
	return Period{To: &t}
}

// Before covers every date strictly before day.
func Before(day time.Time) Period {
	t := entity.DateOnly(day).AddDate(0, 0, -1)
	return Period{To: &t}
}

// Between covers [from, to]; either bound may be nil.
func Between(from, to *time.Time) Period {
	var p Period
	if from != nil {
		f := entity.DateOnly(*from)
		p.From = &f
	}
	if to != nil {
		t := entity.DateOnly(*to)
		p.To = &t
	}
	return p
}

// Contains reports whether day falls inside the period.
func (p Period) Contains(day time.Time) bool {
	if p.From != nil && day.Before(*p.From) {
		return false
	}
	if p.To != nil && day.After(*p.To) {
		return false
	}
	return true
}

// --- Repository Interfaces ---

// Master is a company-owned record with a unique name (or symbol).
type Master interface {
	entity.Validatable
	GetID() id.ID
	GetCompanyID() id.ID
	UniqueKey() string
}

// MasterRepository defines CRUD operations for master records.
type MasterRepository[T Master] interface {
	// Create inserts a new record
	Create(ctx context.Context, m T) error

	// GetByID retrieves a record by ID
	GetByID(ctx context.Context, id id.ID) (T, error)

	// GetByKey retrieves a record by its exact unique key within a company
	GetByKey(ctx context.Context, companyID id.ID, key string) (T, error)

	// Update modifies an existing record
	Update(ctx context.Context, m T) error

	// Delete removes a record
	Delete(ctx context.Context, id id.ID) error

	// DeleteMany removes records by id and returns the number removed
	DeleteMany(ctx context.Context, ids []id.ID) (int64, error)

	// List retrieves records with filtering and pagination
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	BeforeUpdate HookEvent = "before_update"
	BeforeDelete HookEvent = "before_delete"
	AfterCreate  HookEvent = "after_create"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, m T) error

// HookRegistry stores lifecycle hooks for a record type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, m T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
