// Package entity provides the ledger's core records.
package entity

import (
	"context"
	"time"

	"ledgerbook/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains the fields shared by every company-owned record.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// CompanyID is the owning company (tenant boundary)
	CompanyID id.ID `db:"company_id" json:"companyId"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity(companyID id.ID) BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		CompanyID: companyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes UpdatedAt.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// Actor is the caller identity passed into every write operation.
type Actor struct {
	UserID id.ID `json:"userId"`

	// Privileged actors auto-verify their own vouchers.
	Privileged bool `json:"privileged"`
}

// SystemActor is used by the XML importer.
func SystemActor(userID id.ID) Actor {
	return Actor{UserID: userID, Privileged: true}
}

// DateOnly truncates t to a UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GetID returns the record ID.
func (b *BaseEntity) GetID() id.ID { return b.ID }

// GetCompanyID returns the owning company.
func (b *BaseEntity) GetCompanyID() id.ID { return b.CompanyID }
