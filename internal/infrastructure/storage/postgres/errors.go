package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"ledgerbook/internal/core/apperror"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapError turns constraint violations into AppErrors and wraps the rest.
func mapError(err error, op, entityName string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return apperror.NewDuplicate(entityName, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
		case foreignKeyViolation:
			return apperror.NewValidation(entityName+" is referenced by other records").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}
	return fmt.Errorf("%s %s: %w", op, entityName, err)
}
