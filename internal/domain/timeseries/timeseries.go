// Package timeseries turns raw metric events into cumulative daily
// series for the growth dashboard.
//
// Aggregation is a pure function over an immutable snapshot: the same
// event set always produces byte-for-byte identical series, so it is
// safe to recompute per request and to call concurrently.
package timeseries

import (
	"sort"
	"time"

	"github.com/edithlab/growthboard/internal/domain/model"
)

// dateLayout is the ISO calendar date used as bucket key and wire format.
const dateLayout = "2006-01-02"

// Point is one cumulative sample of a metric at a calendar date.
type Point struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Report is the dashboard read model: one cumulative series per metric
// plus flat totals. Each total equals the final cumulative value of its
// series.
type Report struct {
	UsersCount        int     `json:"usersCount"`
	PromptCount       int     `json:"promptCount"`
	ConversationCount int     `json:"conversationCount"`
	Users             []Point `json:"users"`
	Prompts           []Point `json:"prompts"`
	Conversations     []Point `json:"conversations"`
}

// Aggregate builds the cumulative daily series for all metrics.
//
// Events with a zero timestamp are skipped rather than failing the whole
// computation. Every series spans the union of all dates seen across
// metrics: a date with no same-day events for a metric still emits a
// point carrying the previous cumulative value forward, so no series has
// gaps and all three series have equal length.
func Aggregate(events []model.MetricEvent) Report {
	daily := map[model.MetricKind]map[string]int{
		model.KindSignup:       {},
		model.KindPrompt:       {},
		model.KindConversation: {},
	}

	for _, e := range events {
		if e.Timestamp.IsZero() {
			continue
		}
		buckets, ok := daily[e.Kind]
		if !ok {
			continue
		}
		buckets[e.Timestamp.UTC().Format(dateLayout)]++
	}

	dates := dateUnion(daily)

	r := Report{
		Users:         make([]Point, 0, len(dates)),
		Prompts:       make([]Point, 0, len(dates)),
		Conversations: make([]Point, 0, len(dates)),
	}

	// Single ascending walk, one running total per metric.
	var users, prompts, conversations int
	for _, date := range dates {
		users += daily[model.KindSignup][date]
		prompts += daily[model.KindPrompt][date]
		conversations += daily[model.KindConversation][date]

		r.Users = append(r.Users, Point{Date: date, Count: users})
		r.Prompts = append(r.Prompts, Point{Date: date, Count: prompts})
		r.Conversations = append(r.Conversations, Point{Date: date, Count: conversations})
	}

	r.UsersCount = users
	r.PromptCount = prompts
	r.ConversationCount = conversations
	return r
}

// dateUnion collects the distinct dates across all metrics, ascending.
func dateUnion(daily map[model.MetricKind]map[string]int) []string {
	seen := make(map[string]struct{})
	for _, buckets := range daily {
		for date := range buckets {
			seen[date] = struct{}{}
		}
	}
	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// ParseTimestamp converts a raw event timestamp into a time.Time.
// A zero time and false are returned for missing or unparsable input;
// callers skip such records.
func ParseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
