package secureorm

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/modkit-dev/modkit/pkg/problem"
)

// Postgres SQLSTATE classes this package maps by code rather than by
// constraint name: unlike Midaz's per-entity ValidatePGError (which
// switches on application-specific constraint names it owns), this is
// a generic library with no knowledge of any module's schema.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateNotNullViolation    = "23502"
	sqlStateCheckViolation      = "23514"
)

// mapPGError turns a raw driver error into the DomainError a module's
// HTTP boundary expects (problem.From applies the module name when it
// converts this into a Problem), mirroring Midaz's pgconn.PgError +
// errors.As constraint-mapping idiom (asset.postgresql.go) generalized
// by SQLSTATE class instead of by constraint name.
func mapPGError(err error, entityType string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return problem.Conflict(entityType, "a row with the same unique key already exists")
		case sqlStateForeignKeyViolation, sqlStateNotNullViolation, sqlStateCheckViolation:
			return problem.Validation(pgErr.Message)
		}
	}

	return problem.Internal(err)
}
