package loadgen

import (
	"fmt"
	"math/rand"
	"time"
)

// account is a synthetic user the run provisions.
type account struct {
	Email    string
	Name     string
	SocialID string
}

// activityEvent mirrors the POST /events body.
type activityEvent struct {
	Kind    string `json:"kind"`
	OwnerID string `json:"owner_id"`
	TS      string `json:"ts"`
}

// postSubmission mirrors the POST /submissions body.
type postSubmission struct {
	Email string `json:"email"`
	URL   string `json:"url"`
}

var eventKinds = []string{"prompt", "conversation"}

// generateAccounts builds n synthetic accounts with distinct emails.
func generateAccounts(n int, runID string) []account {
	accounts := make([]account, 0, n)
	for i := 0; i < n; i++ {
		accounts = append(accounts, account{
			Email:    fmt.Sprintf("load-%s-%04d@example.com", runID, i),
			Name:     fmt.Sprintf("Load User %04d", i),
			SocialID: fmt.Sprintf("9%08d", i),
		})
	}
	return accounts
}

// generateEvents scatters per-user activity across the configured day span.
func generateEvents(accounts []account, perUser, days int, rng *rand.Rand) []activityEvent {
	now := time.Now().UTC()
	events := make([]activityEvent, 0, len(accounts)*perUser)
	for _, acct := range accounts {
		for i := 0; i < perUser; i++ {
			daysBack := rng.Intn(days)
			ts := now.AddDate(0, 0, -daysBack).Add(-time.Duration(rng.Intn(86400)) * time.Second)
			events = append(events, activityEvent{
				Kind:    eventKinds[rng.Intn(len(eventKinds))],
				OwnerID: acct.Email,
				TS:      ts.Format(time.RFC3339),
			})
		}
	}
	return events
}

// generateSubmissions builds plausible post URLs per account. IDs are
// unique per run so deduplication rejects only deliberate repeats.
func generateSubmissions(accounts []account, perUser int, rng *rand.Rand) []postSubmission {
	subs := make([]postSubmission, 0, len(accounts)*perUser)
	for ai, acct := range accounts {
		for i := 0; i < perUser; i++ {
			contentID := fmt.Sprintf("17%06d%06d", ai, i)
			subs = append(subs, postSubmission{
				Email: acct.Email,
				URL:   fmt.Sprintf("https://x.com/loaduser%04d/status/%s", ai, contentID),
			})
		}
	}
	// Shuffle so each worker hits a mix of owners.
	rng.Shuffle(len(subs), func(i, j int) { subs[i], subs[j] = subs[j], subs[i] })
	return subs
}
