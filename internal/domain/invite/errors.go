package invite

import (
	"fmt"

	"github.com/edithlab/growthboard/internal/domain/fault"
)

// Sentinel kinds for allocation errors.
var (
	// ErrAllocationExhausted is returned when the retry ceiling is hit
	// without committing a code. A Conflict: never retried automatically.
	ErrAllocationExhausted = fmt.Errorf("invite code allocation exhausted: %w", fault.ErrConflict)
)
