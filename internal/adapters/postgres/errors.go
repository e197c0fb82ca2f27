package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// CheckViolationCode is the SQLSTATE for a rejected CHECK constraint.
const CheckViolationCode = "23514"

// AsPgError unwraps err into a *pgconn.PgError when the server rejected a statement.
func AsPgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
