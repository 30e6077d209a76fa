// Package scoring applies moderation score adjustments to accepted
// submissions.
//
// Components start at zero on acceptance and are only ever populated by
// the moderation workflow; the engine's job is keeping the persisted
// total equal to the component sum at all times.
package scoring

import (
	"context"
	"fmt"

	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/internal/domain/model"
)

// Components carries the four score parts of a composite score.
type Components struct {
	Base        int `json:"base"`
	Performance int `json:"performance"`
	Quality     int `json:"quality"`
	Bonus       int `json:"bonus"`
}

// Sum returns the composite total for the components.
func (c Components) Sum() int {
	return c.Base + c.Performance + c.Quality + c.Bonus
}

// TotalOf recomputes a submission's composite score from its persisted
// components. It must always equal the persisted Total field.
func TotalOf(sub model.Submission) int {
	return sub.Base + sub.Performance + sub.Quality + sub.Bonus
}

// Consistent reports whether the stored total honors the sum invariant.
func Consistent(sub model.Submission) bool {
	return sub.Total == TotalOf(sub)
}

// Store persists score mutations for a submission.
type Store interface {
	UpdateScore(ctx context.Context, ownerID, submissionID string, c Components, total int) error
}

// Engine mutates submission scores through a store.
type Engine struct {
	store Store
}

// NewEngine creates a score engine backed by store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Score replaces the submission's components, recomputes the total and
// persists both in one write. The passed submission is updated in place
// on success.
func (e *Engine) Score(ctx context.Context, sub *model.Submission, c Components) error {
	if sub == nil {
		return fmt.Errorf("score: nil submission: %w", fault.ErrInvalidInput)
	}

	total := c.Sum()
	// The store error already carries its fault kind; a missing
	// submission must surface as not-found, not as a write failure.
	if err := e.store.UpdateScore(ctx, sub.OwnerID, sub.ID, c, total); err != nil {
		return fmt.Errorf("persist score for %s: %w", sub.ID, err)
	}

	sub.Base = c.Base
	sub.Performance = c.Performance
	sub.Quality = c.Quality
	sub.Bonus = c.Bonus
	sub.Total = total
	return nil
}
