// Package dto holds the request and response bodies of the HTTP API.
package dto

import (
	"time"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/id"
)

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// IDsRequest names records for a bulk operation.
type IDsRequest struct {
	IDs []id.ID `json:"ids" binding:"required,min=1"`
}

// DeletedResponse reports how many records a bulk delete removed.
type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return t, nil
}

// ParseOptionalDate parses value unless it is empty.
func ParseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
