// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/edithlab/growthboard/internal/domain/leaderboard"
	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/internal/domain/submission"
	"github.com/edithlab/growthboard/internal/domain/timeseries"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// GrowthReport assembles the cumulative daily series for the dashboard.
	GrowthReport(ctx context.Context) (timeseries.Report, error)

	// PointsCount sums the chat points across all users.
	PointsCount(ctx context.Context) (int64, error)

	// Submit runs a raw post URL through the validation pipeline.
	Submit(ctx context.Context, ownerID, rawURL string) (submission.Result, error)

	// Read operations backing the leaderboard page.
	OwnerSubmissions(ctx context.Context, ownerID string) ([]model.Submission, error)
	SocialUserCount(ctx context.Context) (int64, error)
	TopRanked(ctx context.Context, limit int) ([]model.RankedUser, error)
	Cycles(ctx context.Context) ([]leaderboard.Cycle, error)

	// Signup provisions an account and returns its invite code.
	Signup(ctx context.Context, email, name string) (string, error)

	// LinkSocialAccount attaches a social author ID to an existing account.
	LinkSocialAccount(ctx context.Context, email, socialID string) error

	// RecordEvent ingests a raw prompt or conversation event.
	RecordEvent(ctx context.Context, e model.MetricEvent) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	growthHandler      *GrowthHandler
	submissionsHandler *SubmissionsHandler
	leaderboardHandler *LeaderboardHandler
	usersHandler       *UsersHandler
	eventsHandler      *EventsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		growthHandler:      NewGrowthHandler(deps),
		submissionsHandler: NewSubmissionsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, defaultTopRankedLimit),
		usersHandler:       NewUsersHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/growth", MetricsMiddleware(s.growthHandler.HandleGetGrowth, "growth"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/users", MetricsMiddleware(s.usersHandler.HandleSignup, "users"))
	mux.HandleFunc("/users/link", MetricsMiddleware(s.usersHandler.HandleLinkSocial, "users_link"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
}

// softResponse is the soft success/failure envelope the submission and
// account routes answer with.
type softResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
