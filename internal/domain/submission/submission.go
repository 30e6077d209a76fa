// Package submission implements the validation state machine for
// externally-sourced social posts.
//
// A submission walks Received -> URLValidated -> ContentFetched ->
// OwnershipVerified -> Deduplicated -> Accepted, with Rejected as the
// absorbing state reachable from every step. Rejections are terminal for
// the request; only a fetch failure is worth retrying, and the retry is
// the caller's call, never the engine's.
package submission

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/pkg/metrics"
)

// statusPathSegment is the fixed middle segment of a valid post URL.
const statusPathSegment = "status"

// State identifies a step in the validation machine.
type State int

// Machine states in walk order.
const (
	StateReceived State = iota
	StateURLValidated
	StateContentFetched
	StateOwnershipVerified
	StateDeduplicated
	StateAccepted
	StateRejected
)

// Reason classifies why a submission was rejected.
type Reason int

// Rejection reasons surfaced to the caller.
const (
	ReasonNone Reason = iota
	ReasonInvalidURL
	ReasonDuplicateContent
	ReasonFetchFailure
	ReasonOwnershipMismatch
)

// Message returns the user-facing failure message for a reason.
func (r Reason) Message() string {
	switch r {
	case ReasonInvalidURL:
		return "Invalid post URL"
	case ReasonDuplicateContent:
		return "Content already exists"
	case ReasonFetchFailure:
		return "Failed to fetch post content"
	case ReasonOwnershipMismatch:
		return "Please submit a post from your own account. We cannot process posts from other accounts."
	default:
		return ""
	}
}

// Kind maps a reason onto the engine error taxonomy.
func (r Reason) Kind() error {
	switch r {
	case ReasonInvalidURL:
		return fault.ErrInvalidInput
	case ReasonDuplicateContent:
		return fault.ErrConflict
	case ReasonFetchFailure:
		return fault.ErrUpstreamUnavailable
	case ReasonOwnershipMismatch:
		return fault.ErrInvalidInput
	default:
		return nil
	}
}

// Result is the discriminated outcome of one validation run. State is
// either StateAccepted with Submission set, or StateRejected with
// Reason set.
type Result struct {
	State      State
	Reason     Reason
	Submission *model.Submission
}

// Accepted reports whether the submission reached the accepting state.
func (r Result) Accepted() bool {
	return r.State == StateAccepted
}

// Fetcher retrieves the canonical thread content for a content ID from
// the external content API. Implementations must bound the call with a
// timeout; a transport or not-found failure is an upstream error.
type Fetcher interface {
	FetchThread(ctx context.Context, contentID string) (model.Thread, error)
}

// ContentStore is the per-owner submission collection collaborator.
type ContentStore interface {
	// ListByOwner returns all prior submissions for an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Submission, error)

	// Append atomically re-checks for a duplicate content ID and inserts.
	// Returns a conflict error when the owner already holds the content.
	Append(ctx context.Context, ownerID string, sub model.Submission) error
}

// Directory resolves the social account identifier linked to an owner.
type Directory interface {
	SocialID(ctx context.Context, ownerID string) (string, error)
}

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithAllowedHosts overrides the social-domain allow list.
func WithAllowedHosts(hosts ...string) Option {
	return func(v *Validator) {
		if len(hosts) > 0 {
			v.hosts = make(map[string]struct{}, len(hosts))
			for _, h := range hosts {
				v.hosts[strings.ToLower(h)] = struct{}{}
			}
		}
	}
}

// WithClock overrides the posted-at timestamp source.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithIDGenerator overrides submission ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(v *Validator) {
		if gen != nil {
			v.newID = gen
		}
	}
}

// Validator runs the submission state machine against its collaborators.
type Validator struct {
	fetcher  Fetcher
	contents ContentStore
	users    Directory

	hosts map[string]struct{}
	now   func() time.Time
	newID func() string
}

// NewValidator creates a validator with the default allow list.
func NewValidator(fetcher Fetcher, contents ContentStore, users Directory, opts ...Option) *Validator {
	v := &Validator{
		fetcher:  fetcher,
		contents: contents,
		users:    users,
		hosts: map[string]struct{}{
			"twitter.com": {},
			"x.com":       {},
		},
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate runs the full machine for one raw URL submitted by ownerID.
//
// The external fetch happens before any per-owner serialization: the
// content store's Append is the single atomic dedup-and-insert step, so
// no lock is held while the network call is in flight. The returned
// error is non-nil only for repository failures; every business rejection
// comes back as a Result in StateRejected.
func (v *Validator) Validate(ctx context.Context, ownerID, rawURL string) (Result, error) {
	contentID, ok := ParseContentID(rawURL, v.hosts)
	if !ok {
		return v.reject(ReasonInvalidURL), nil
	}

	// Pre-fetch duplicate check: cheap rejection before any external call.
	prior, err := v.contents.ListByOwner(ctx, ownerID)
	if err != nil {
		return Result{State: StateRejected}, fmt.Errorf("list prior submissions: %w: %w", fault.ErrPersistence, err)
	}
	if hasContent(prior, contentID) {
		return v.reject(ReasonDuplicateContent), nil
	}

	thread, err := v.fetcher.FetchThread(ctx, contentID)
	if err != nil {
		return v.reject(ReasonFetchFailure), nil
	}

	socialID, err := v.users.SocialID(ctx, ownerID)
	if err != nil {
		return Result{State: StateRejected}, fmt.Errorf("resolve linked social id: %w: %w", fault.ErrPersistence, err)
	}
	if socialID == "" || thread.AuthorID != socialID {
		return v.reject(ReasonOwnershipMismatch), nil
	}

	// Post-fetch duplicate check: the canonical ID may differ from the
	// URL-derived one (redirects, vanity URLs).
	if thread.ContentID != contentID && hasContent(prior, thread.ContentID) {
		return v.reject(ReasonDuplicateContent), nil
	}

	sub := model.Submission{
		ID:        v.newID(),
		ContentID: thread.ContentID,
		OwnerID:   ownerID,
		SourceURL: CanonicalURL(thread),
		Text:      thread.Text,
		Status:    model.StatusAccepted,
		CreatedAt: thread.CreatedAt,
		PostedAt:  v.now().UTC().Truncate(time.Second),
	}

	// Atomic dedup-check-and-append: two concurrent submissions for the
	// same owner and content cannot both pass.
	if err := v.contents.Append(ctx, ownerID, sub); err != nil {
		if !isConflict(err) {
			return Result{State: StateRejected}, fmt.Errorf("append submission: %w: %w", fault.ErrPersistence, err)
		}
		return v.reject(ReasonDuplicateContent), nil
	}

	metrics.RecordSubmissionAccepted()
	return Result{State: StateAccepted, Submission: &sub}, nil
}

func (v *Validator) reject(reason Reason) Result {
	metrics.RecordSubmissionRejected(reasonLabel(reason))
	return Result{State: StateRejected, Reason: reason}
}

func reasonLabel(r Reason) string {
	switch r {
	case ReasonInvalidURL:
		return "invalid_url"
	case ReasonDuplicateContent:
		return "duplicate_content"
	case ReasonFetchFailure:
		return "fetch_failure"
	case ReasonOwnershipMismatch:
		return "ownership_mismatch"
	default:
		return "unknown"
	}
}

func isConflict(err error) bool {
	return errors.Is(err, fault.ErrConflict)
}

func hasContent(subs []model.Submission, contentID string) bool {
	for i := range subs {
		if subs[i].ContentID == contentID {
			return true
		}
	}
	return false
}

// ParseContentID validates a raw post URL against the allow list and
// extracts the numeric content ID. The path must be exactly three
// non-empty segments /{user}/status/{digits}; query strings and trailing
// slashes are ignored.
func ParseContentID(rawURL string, hosts map[string]struct{}) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if _, ok := hosts[strings.ToLower(u.Hostname())]; !ok {
		return "", false
	}

	segments := nonEmptySegments(u.Path)
	if len(segments) != 3 || segments[1] != statusPathSegment {
		return "", false
	}

	id := segments[2]
	if !allDigits(id) {
		return "", false
	}
	return id, true
}

// CanonicalURL rewrites an accepted submission's URL into the canonical
// form for its fetched thread.
func CanonicalURL(t model.Thread) string {
	return "https://x.com/" + t.ScreenName + "/" + statusPathSegment + "/" + t.ContentID
}

func nonEmptySegments(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
