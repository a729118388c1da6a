package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "gearguard/pkg/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapPgError приводит ошибки драйвера к доменным.
func mapPgError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
		case pgForeignKeyViolation:
			return apperrors.NewInvalidInputError("Связанная запись не найдена или используется: %s", pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
