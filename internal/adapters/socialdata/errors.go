package socialdata

import (
	"fmt"

	"github.com/edithlab/growthboard/internal/domain/fault"
)

var (
	// ErrRequestFailed covers transport failures and non-2xx answers.
	ErrRequestFailed = fmt.Errorf("social data request failed: %w", fault.ErrUpstreamUnavailable)

	// ErrEmptyThread is returned when the provider answers with no tweets.
	ErrEmptyThread = fmt.Errorf("social data thread is empty: %w", fault.ErrUpstreamUnavailable)

	// ErrMalformedPayload is returned when the provider body cannot be decoded.
	ErrMalformedPayload = fmt.Errorf("social data payload is malformed: %w", fault.ErrUpstreamUnavailable)
)
