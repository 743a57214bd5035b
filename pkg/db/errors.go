package db

import (
	"errors"
	"strings"

	pkgerrors "github.com/SeptianAdiraharja/Inventory/pkg/errors"
)

const (
	sqlStateUniqueViolation      = "23505"
	sqlStateCheckViolation       = "23514"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateSerializationFailure = "40001"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if pg, ok := pkgerrors.AsPGError(err); ok {
		if pg.Code != sqlStateUniqueViolation {
			return false
		}
		return constraintName == "" || pg.Constraint == constraintName
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsCheckViolation reports whether err is a CHECK constraint failure, such as
// the items.stock >= 0 guard.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if pg, ok := pkgerrors.AsPGError(err); ok {
		return pg.Code == sqlStateCheckViolation
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// IsLockConflict reports whether err is a lock wait timeout, deadlock or
// serialization failure anywhere in its chain. Callers may retry these.
func IsLockConflict(err error) bool {
	if err == nil {
		return false
	}
	if pg, ok := pkgerrors.AsPGError(err); ok {
		switch pg.Code {
		case sqlStateLockNotAvailable, sqlStateDeadlockDetected, sqlStateSerializationFailure:
			return true
		}
		return false
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
			return true
		}
	}
	return false
}

// TranslateLockError maps lock conflicts to a typed retryable error and
// returns every other error untouched.
func TranslateLockError(err error) error {
	if err == nil || pkgerrors.HasCode(err, pkgerrors.CodeLockConflict) {
		return err
	}
	if IsLockConflict(err) {
		return pkgerrors.Wrap(pkgerrors.CodeLockConflict, err, "row is locked by another request, retry")
	}
	return err
}
