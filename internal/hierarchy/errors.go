package hierarchy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPartnerID indicates a record id is missing or not an integer
	ErrInvalidPartnerID = errors.New("invalid partner ID")
	// ErrInvalidParentID indicates a non-null parent id that is not an integer
	ErrInvalidParentID = errors.New("invalid parent ID")
	// ErrDuplicatePartnerID indicates the same id appears more than once in the input
	ErrDuplicatePartnerID = errors.New("duplicate partner ID")
	// ErrCycleDetected indicates a partner is its own ancestor
	ErrCycleDetected = errors.New("cycle detected in partner hierarchy")
	// ErrParentNotFound indicates a parent id that no record in the input declares
	ErrParentNotFound = errors.New("parent not found")
	// ErrInvalidRevenue indicates monthly revenue that is missing, non-numeric or negative
	ErrInvalidRevenue = errors.New("invalid monthly revenue")
)

// CycleError carries the ids forming a cycle, starting and ending on the same id.
type CycleError struct {
	Path []int64
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}
