package repository

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// ErrDuplicate reports a unique constraint violation.
var ErrDuplicate = errors.New("duplicate key")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
