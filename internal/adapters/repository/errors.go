package repository

import (
	"fmt"

	"github.com/edithlab/growthboard/internal/domain/fault"
)

// Sentinel kinds for repository errors, pre-mapped onto the engine
// error taxonomy so callers can branch on either identity.
var (
	ErrUserNotFound       = fmt.Errorf("user not found: %w", fault.ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("submission not found: %w", fault.ErrNotFound)
	ErrDuplicateContent   = fmt.Errorf("duplicate content for owner: %w", fault.ErrConflict)
	ErrCodeTaken          = fmt.Errorf("invite code already issued: %w", fault.ErrConflict)
)
