package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. Postgres names the violated constraint in the message,
// sqlite only lists the columns, so a named check must also accept the generic
// duplicate markers or it would miss every sqlite violation.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
