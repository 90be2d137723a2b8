package sqlite

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// uniqueViolation reports whether err is a UNIQUE (or PRIMARY KEY) failure
// and returns the driver message, which names the offending columns.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return liteErr.Error(), true
		}
	}

	msg := err.Error()
	if strings.Contains(strings.ToLower(msg), "unique constraint failed") {
		return msg, true
	}
	return "", false
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}

	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}
