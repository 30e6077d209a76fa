// Package invite allocates globally-unique referral codes.
//
// Codes are 6 uppercase hex characters drawn from crypto/rand. The
// commit is an atomic unique-constraint insert at the issuer, so two
// concurrent allocators can never both win the same code; on collision
// the allocator retries with a fresh candidate up to a fixed ceiling and
// then fails loudly instead of recursing forever.
package invite

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/pkg/metrics"
)

// Code shape constants.
const (
	CodeLength         = 6
	codeBytes          = CodeLength / 2
	defaultMaxAttempts = 5
)

// Issuer commits a candidate code. The insert must be atomic against a
// uniqueness constraint: a code already issued returns a conflict.
type Issuer interface {
	ClaimCode(ctx context.Context, code string) error
}

// Option applies a configuration option to the Allocator.
type Option func(*Allocator)

// WithMaxAttempts sets the collision retry ceiling.
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// Allocator issues unique invite codes through an Issuer.
type Allocator struct {
	issuer      Issuer
	maxAttempts int
}

// NewAllocator creates an allocator with the default retry ceiling.
func NewAllocator(issuer Issuer, opts ...Option) *Allocator {
	a := &Allocator{
		issuer:      issuer,
		maxAttempts: defaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Allocate draws candidates until one commits, up to the retry ceiling.
// Returns ErrAllocationExhausted once the ceiling is hit.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		code, err := NewCode()
		if err != nil {
			return "", err
		}

		err = a.issuer.ClaimCode(ctx, code)
		if err == nil {
			return code, nil
		}
		if errors.Is(err, fault.ErrConflict) {
			metrics.RecordInviteCollision()
			continue
		}
		return "", fmt.Errorf("claim code: %w", fault.ErrPersistence)
	}

	metrics.RecordInviteExhausted()
	return "", fmt.Errorf("%d attempts: %w", a.maxAttempts, ErrAllocationExhausted)
}

// NewCode draws one 6-character uppercase hex candidate from crypto/rand.
func NewCode() (string, error) {
	var buf [codeBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf[:])), nil
}
