package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// IsLocked reports whether err is transient lock contention that a retry
// may clear.
func IsLocked(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "55P03", // lock_not_available
			"40P01", // deadlock_detected
			"40001": // serialization_failure
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}
