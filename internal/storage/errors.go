package storage

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

// postgres error code for unique_violation.
const sqlStateUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation,
// used to translate a lost version/name race into a domain sentinel error
// instead of a raw driver error.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == sqlStateUniqueViolation
	}
	return false
}
