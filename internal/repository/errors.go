package repository

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on a UNIQUE violation (duplicate email).
	ErrDuplicate = errors.New("duplicate record")
	// ErrConstraint is returned on FOREIGN KEY, CHECK or NOT NULL violations.
	ErrConstraint = errors.New("constraint violation")
)

// mapError translates driver constraint errors into the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return ErrDuplicate
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_CHECK,
		sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return ErrConstraint
	case sqlite3.SQLITE_CONSTRAINT:
		// primary code only, when extended codes are off
		if strings.Contains(serr.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return ErrConstraint
	}
	return err
}
