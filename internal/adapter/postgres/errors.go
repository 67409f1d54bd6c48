package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// translateWriteError maps constraint violations onto domain sentinels so
// callers can answer 400/409 instead of 500.
func translateWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, domain.ErrUnknownReference, pgErr.ConstraintName)
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, domain.ErrAlreadyExists, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
