// Package model contains domain models passed between layers.
package model

import "time"

// MetricKind identifies which growth metric an event belongs to.
type MetricKind int

// Metric kinds tracked by the dashboard.
const (
	KindSignup MetricKind = iota
	KindPrompt
	KindConversation
)

// String returns the metric name used in read models and logs.
func (k MetricKind) String() string {
	switch k {
	case KindSignup:
		return "signup"
	case KindPrompt:
		return "prompt"
	case KindConversation:
		return "conversation"
	default:
		return "unknown"
	}
}

// MetricEvent is a single raw timestamped record supplied by the event
// source. Immutable once produced.
type MetricEvent struct {
	Kind      MetricKind
	Timestamp time.Time
	OwnerID   string
}

// SubmissionStatus tracks the lifecycle of a social submission.
type SubmissionStatus int

// Submission lifecycle states. Accepted submissions are retained as
// history and never deleted.
const (
	StatusPending SubmissionStatus = iota
	StatusAccepted
	StatusRejected
)

// Submission is an accepted social post owned by exactly one user.
// Total is always Base+Performance+Quality+Bonus; only the score engine
// mutates the components after acceptance.
type Submission struct {
	ID          string           `json:"id"`
	ContentID   string           `json:"contentId"`
	OwnerID     string           `json:"ownerId"`
	SourceURL   string           `json:"url"`
	Text        string           `json:"title"`
	Status      SubmissionStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	PostedAt    time.Time        `json:"postedAt"`
	Base        int              `json:"base"`
	Performance int              `json:"performance"`
	Quality     int              `json:"quality"`
	Bonus       int              `json:"bonus"`
	Total       int              `json:"total"`
}

// RotationPeriod groups submissions into a leaderboard cycle. The keys
// are opaque ordering values assigned upstream; boundaries are never
// computed here.
type RotationPeriod struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Week  int `json:"week"`
}

// Thread is the canonical content returned by the external content API
// for a submitted post.
type Thread struct {
	ContentID  string
	AuthorID   string
	ScreenName string
	Text       string
	CreatedAt  time.Time
}

// RankedUser is a leaderboard read-model row for the top-users strip.
type RankedUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Rank  int    `json:"rank"`
	Score int    `json:"score"`
}
