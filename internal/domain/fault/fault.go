// Package fault defines the error taxonomy shared across the engine.
//
// Every public operation converts internal failures to one of these
// kinds before crossing a component boundary. Callers branch with
// errors.Is; only UpstreamUnavailable is safe to retry.
package fault

import "errors"

// Sentinel kinds for engine errors.
var (
	// ErrInvalidInput marks malformed input (URL, date). Never retryable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a missing owner or content record.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks duplicate content or an exhausted code allocation.
	ErrConflict = errors.New("conflict")

	// ErrUpstreamUnavailable marks an external content API failure. The
	// caller may retry with a fresh request; the engine never retries it.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrPersistence marks a repository write failure. Fatal to the
	// current request; the cause stays in the chain for logging but
	// clients only ever see a generic failure.
	ErrPersistence = errors.New("persistence failure")
)

// Retryable reports whether the caller may retry the failed operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}
