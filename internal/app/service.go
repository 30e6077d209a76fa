// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edithlab/growthboard/internal/adapters/repository"
	"github.com/edithlab/growthboard/internal/adapters/socialdata"
	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/internal/domain/invite"
	"github.com/edithlab/growthboard/internal/domain/leaderboard"
	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/internal/domain/scoring"
	"github.com/edithlab/growthboard/internal/domain/submission"
	"github.com/edithlab/growthboard/internal/domain/timeseries"
	"github.com/edithlab/growthboard/pkg/logger"
	"github.com/edithlab/growthboard/pkg/metrics"
	"github.com/google/uuid"
)

// Service implements the API dependencies for the growth board system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     *repository.Store
	fetcher   submission.Fetcher
	validator *submission.Validator
	scorer    *scoring.Engine
	allocator *invite.Allocator

	// Configuration
	dsn             string
	contentAPIBase  string
	contentAPIToken string
	fetchTimeout    time.Duration
	codeAttempts    int
	topRankedLimit  int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDSN sets the sqlite data source the service opens on start.
func WithDSN(dsn string) Option {
	return func(s *Service) {
		if dsn != "" {
			s.dsn = dsn
		}
	}
}

// WithContentAPI sets the external content API endpoint and token.
func WithContentAPI(baseURL, token string) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.contentAPIBase = baseURL
		}
		s.contentAPIToken = token
	}
}

// WithFetchTimeout bounds a single external content fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithFetcher injects a content fetcher, replacing the default client.
func WithFetcher(f submission.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithCodeAttempts sets the invite code allocation retry ceiling.
func WithCodeAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.codeAttempts = n
		}
	}
}

// WithTopRankedLimit sets how many users the leaderboard strip reads.
func WithTopRankedLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topRankedLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dsn:            "growthboard.db",
		contentAPIBase: socialdata.DefaultBaseURL,
		fetchTimeout:   10 * time.Second,
		codeAttempts:   5,
		topRankedLimit: 5,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and wires the domain components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting growth board service...")

	store, err := repository.Open(s.dsn)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	s.store = store

	if s.fetcher == nil {
		s.fetcher = socialdata.NewClient(s.contentAPIToken,
			socialdata.WithBaseURL(s.contentAPIBase),
			socialdata.WithTimeout(s.fetchTimeout),
			socialdata.WithLogger(s.logger.Named("socialdata")),
		)
	}

	s.validator = submission.NewValidator(s.fetcher, s.store, s.store)
	s.scorer = scoring.NewEngine(s.store)
	s.allocator = invite.NewAllocator(s.store, invite.WithMaxAttempts(s.codeAttempts))

	s.started = true
	s.logger.Info(ctx, "growth board service started",
		logger.String("dsn", s.dsn),
		logger.Int("codeAttempts", s.codeAttempts),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping growth board service...")

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "growth board service stopped")
}

// GrowthReport assembles the cumulative daily series for the dashboard.
func (s *Service) GrowthReport(ctx context.Context) (timeseries.Report, error) {
	events, err := s.store.ListMetricEvents(ctx)
	if err != nil {
		return timeseries.Report{}, err
	}
	return timeseries.Aggregate(events), nil
}

// PointsCount sums chat points across all users.
func (s *Service) PointsCount(ctx context.Context) (int64, error) {
	return s.store.PointsSum(ctx)
}

// Submit runs a raw post URL through the validation pipeline for the
// given owner.
func (s *Service) Submit(ctx context.Context, ownerID, rawURL string) (submission.Result, error) {
	result, err := s.validator.Validate(ctx, ownerID, rawURL)
	if err != nil {
		s.logger.Error(ctx, "submission pipeline failed",
			logger.String("owner", ownerID),
			logger.Error(err),
		)
		return result, err
	}
	if result.Accepted() {
		s.logger.Info(ctx, "submission accepted",
			logger.String("owner", ownerID),
			logger.String("contentID", result.Submission.ContentID),
		)
	}
	return result, nil
}

// ScoreSubmission applies moderation score components to an accepted
// submission and persists the recomputed total.
func (s *Service) ScoreSubmission(ctx context.Context, sub *model.Submission, c scoring.Components) error {
	return s.scorer.Score(ctx, sub, c)
}

// OwnerSubmissions lists the owner's accepted submissions.
func (s *Service) OwnerSubmissions(ctx context.Context, ownerID string) ([]model.Submission, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// SocialUserCount counts users with a linked social account.
func (s *Service) SocialUserCount(ctx context.Context) (int64, error) {
	return s.store.SocialUserCount(ctx)
}

// TopRanked returns the highest board placements, one row per user.
func (s *Service) TopRanked(ctx context.Context, limit int) ([]model.RankedUser, error) {
	if limit < 1 || limit > s.topRankedLimit {
		limit = s.topRankedLimit
	}
	return s.store.TopRanked(ctx, limit)
}

// Cycles loads every rotation period with its submissions.
func (s *Service) Cycles(ctx context.Context) ([]leaderboard.Cycle, error) {
	return s.store.ListCycles(ctx)
}

// Signup provisions a new account: an invite code is allocated first,
// then the user row is created carrying it.
func (s *Service) Signup(ctx context.Context, email, name string) (string, error) {
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return "", fmt.Errorf("signup %s: %w", email, fault.ErrConflict)
	}

	code, err := s.allocator.Allocate(ctx)
	if err != nil {
		return "", fmt.Errorf("allocate invite code: %w", err)
	}

	err = s.store.Create(ctx, repository.User{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       name,
		InviteCode: code,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "user provisioned", logger.String("email", email))
	return code, nil
}

// LinkSocialAccount attaches a social author ID to an existing account.
func (s *Service) LinkSocialAccount(ctx context.Context, email, socialID string) error {
	return s.store.LinkSocialID(ctx, email, socialID)
}

// RecordEvent ingests a raw prompt or conversation event.
func (s *Service) RecordEvent(ctx context.Context, e model.MetricEvent) error {
	return s.store.RecordEvent(ctx, e)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"codeAttempts":   s.codeAttempts,
		"topRankedLimit": s.topRankedLimit,
	}

	if s.started {
		if users, err := s.store.Count(ctx); err == nil {
			stats["totalUsers"] = users
			metrics.UpdateUsersTotal(users)
		}
		if subs, err := s.store.SubmissionCount(ctx); err == nil {
			stats["totalSubmissions"] = subs
			metrics.UpdateSubmissionsTotal(subs)
		}
	}

	return stats
}
