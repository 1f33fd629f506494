package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation      = "23505"
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsExclusionConflict reports a unique or exclusion constraint rejecting
// a row, i.e. someone else stored the same slot first.
func IsExclusionConflict(err error) bool {
	switch pgCode(err) {
	case pgUniqueViolation, pgExclusionViolation:
		return true
	}
	return false
}

// IsSerializationFailure reports a transaction aborted by the database so
// that it can be retried.
func IsSerializationFailure(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}
