package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MaxQueryLen bounds the accepted search query length.
const MaxQueryLen = 200

var ErrEmptyQuery = errors.New("query cannot be empty")

// ValidateQuery trims and validates a search query. Validation failures
// surface to the caller before any provider or ranking work begins.
func ValidateQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrEmptyQuery
	}
	if len(q) > MaxQueryLen {
		return "", fmt.Errorf("query exceeds %d characters", MaxQueryLen)
	}
	return q, nil
}
