package entity

import (
	"context"
	"strings"
	"time"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/id"
)

// Company owns every other record. It is the tenant boundary.
type Company struct {
	ID              id.ID     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	FiscalYearStart time.Time `db:"fiscal_year_start" json:"fiscalYearStart"`
	BooksStart      time.Time `db:"books_start" json:"booksStart"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// NewCompany creates a company whose books start on the fiscal year start.
func NewCompany(name string, fiscalYearStart time.Time) *Company {
	start := DateOnly(fiscalYearStart)
	return &Company{
		ID:              id.New(),
		Name:            strings.TrimSpace(name),
		FiscalYearStart: start,
		BooksStart:      start,
		CreatedAt:       time.Now().UTC(),
	}
}

// Validate implements Validatable.
func (c *Company) Validate(_ context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("company name is required").WithDetail("field", "name")
	}
	if c.FiscalYearStart.IsZero() {
		return apperror.NewValidation("fiscal year start is required").WithDetail("field", "fiscalYearStart")
	}
	if !c.BooksStart.IsZero() && c.BooksStart.Before(c.FiscalYearStart) {
		return apperror.NewValidation("books cannot start before the fiscal year").
			WithDetail("field", "booksStart")
	}
	return nil
}
