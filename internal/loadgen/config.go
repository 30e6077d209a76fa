// Package loadgen seeds a running growth board instance with synthetic
// accounts, activity events, and post submissions, then reads back the
// dashboard and leaderboard to sanity-check the deployment.
package loadgen

import "time"

// Config controls a load generation run.
type Config struct {
	// BaseURL of the running service, e.g. http://localhost:9080.
	BaseURL string

	// Users is how many synthetic accounts to provision.
	Users int

	// EventsPerUser is how many prompt/conversation events to post per user.
	EventsPerUser int

	// SubmissionsPerUser is how many post URLs to replay per user.
	SubmissionsPerUser int

	// Workers is the number of concurrent senders.
	Workers int

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// Days is the span of calendar days event timestamps scatter across.
	Days int

	// Verbose enables per-request logging.
	Verbose bool
}

// Stats accumulates the outcome of a run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	UsersCreated     int
	UsersConflicted  int
	EventsAccepted   int
	EventsFailed     int
	SubmissionsOK    int
	SubmissionsSoft  int
	SubmissionsError int
}
