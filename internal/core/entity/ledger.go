package entity

import (
	"context"
	"strings"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
)

// Ledger is a named account. OpeningBalance is Dr-positive.
type Ledger struct {
	BaseEntity
	GroupID        id.ID             `db:"group_id" json:"groupId"`
	Name           string            `db:"name" json:"name"`
	OpeningBalance types.SignedMoney `db:"opening_balance" json:"openingBalance"`
}

// NewLedger creates a ledger.
func NewLedger(companyID, groupID id.ID, name string, opening types.SignedMoney) *Ledger {
	return &Ledger{
		BaseEntity:     NewBaseEntity(companyID),
		GroupID:        groupID,
		Name:           strings.TrimSpace(name),
		OpeningBalance: opening,
	}
}

// Validate implements Validatable.
func (l *Ledger) Validate(_ context.Context) error {
	if l.Name == "" {
		return apperror.NewValidation("ledger name is required").WithDetail("field", "name")
	}
	if id.IsNil(l.GroupID) {
		return apperror.NewValidation("ledger group is required").WithDetail("field", "groupId")
	}
	return nil
}

// UniqueKey is the name, unique per company.
func (l *Ledger) UniqueKey() string { return l.Name }
