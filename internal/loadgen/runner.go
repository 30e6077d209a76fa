package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edithlab/growthboard/pkg/logger"
)

// Run executes a complete load generation pass against the service.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("eventsPerUser", cfg.EventsPerUser),
		logger.Int("submissionsPerUser", cfg.SubmissionsPerUser),
		logger.Int("workers", cfg.Workers),
	)

	c := newClient(cfg.Timeout)

	if err := checkHealth(ctx, c, cfg); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	runID := fmt.Sprintf("%06d", time.Now().Unix()%1_000_000)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	accounts := generateAccounts(cfg.Users, runID)
	if err := seedAccounts(ctx, c, cfg, accounts, stats); err != nil {
		return fmt.Errorf("account seeding failed: %w", err)
	}

	var acceptedEvents, failedEvents int64
	events := generateEvents(accounts, cfg.EventsPerUser, cfg.Days, rng)
	submitConcurrently(ctx, cfg, len(events), func(i int) {
		status, _, err := c.postJSON(ctx, cfg.BaseURL+"/events", events[i])
		if err == nil && status == http.StatusAccepted {
			atomic.AddInt64(&acceptedEvents, 1)
		} else {
			atomic.AddInt64(&failedEvents, 1)
		}
	})
	stats.EventsAccepted = int(atomic.LoadInt64(&acceptedEvents))
	stats.EventsFailed = int(atomic.LoadInt64(&failedEvents))

	var okSubs, softSubs, erroredSubs int64
	subs := generateSubmissions(accounts, cfg.SubmissionsPerUser, rng)
	submitConcurrently(ctx, cfg, len(subs), func(i int) {
		status, body, err := c.postJSON(ctx, cfg.BaseURL+"/submissions", subs[i])
		switch {
		case err != nil || status >= http.StatusInternalServerError:
			atomic.AddInt64(&erroredSubs, 1)
		case status == http.StatusOK && isSoftSuccess(body):
			atomic.AddInt64(&okSubs, 1)
		default:
			// Soft rejections are expected here: the content provider
			// does not know these synthetic posts.
			atomic.AddInt64(&softSubs, 1)
		}
	})
	stats.SubmissionsOK = int(atomic.LoadInt64(&okSubs))
	stats.SubmissionsSoft = int(atomic.LoadInt64(&softSubs))
	stats.SubmissionsError = int(atomic.LoadInt64(&erroredSubs))

	if err := readBack(ctx, c, cfg, accounts, log); err != nil {
		return fmt.Errorf("read-back failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "load run finished",
		logger.Int("usersCreated", stats.UsersCreated),
		logger.Int("usersConflicted", stats.UsersConflicted),
		logger.Int("eventsAccepted", stats.EventsAccepted),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("submissionsOK", stats.SubmissionsOK),
		logger.Int("submissionsSoft", stats.SubmissionsSoft),
		logger.Int("submissionsError", stats.SubmissionsError),
		logger.String("duration", stats.Duration.String()),
	)
	return nil
}

// checkHealth verifies the service answers on /healthz.
func checkHealth(ctx context.Context, c *client, cfg *Config) error {
	status, _, err := c.get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected health status %d", status)
	}
	return nil
}

// seedAccounts provisions the synthetic users and links their social IDs.
func seedAccounts(ctx context.Context, c *client, cfg *Config, accounts []account, stats *Stats) error {
	for _, acct := range accounts {
		status, body, err := c.postJSON(ctx, cfg.BaseURL+"/users", map[string]string{
			"email": acct.Email,
			"name":  acct.Name,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", acct.Email, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("create %s: unexpected status %d", acct.Email, status)
		}
		if isSoftSuccess(body) {
			stats.UsersCreated++
		} else {
			stats.UsersConflicted++
		}

		status, _, err = c.postJSON(ctx, cfg.BaseURL+"/users/link", map[string]string{
			"email":    acct.Email,
			"socialId": acct.SocialID,
		})
		if err != nil || status != http.StatusOK {
			return fmt.Errorf("link %s: status %d, %w", acct.Email, status, err)
		}
	}
	return nil
}

// submitConcurrently fans n indexed jobs out over the configured workers.
func submitConcurrently(ctx context.Context, cfg *Config, n int, send func(i int)) {
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
					send(i)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
}

// readBack pulls the dashboard and one leaderboard page to confirm the
// seeded data is visible.
func readBack(ctx context.Context, c *client, cfg *Config, accounts []account, log logger.Logger) error {
	status, body, err := c.get(ctx, cfg.BaseURL+"/growth")
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("growth read: status %d, %w", status, err)
	}
	var growth struct {
		UsersCount        int `json:"usersCount"`
		PromptCount       int `json:"promptCount"`
		ConversationCount int `json:"conversationCount"`
	}
	if err := json.Unmarshal(body, &growth); err != nil {
		return fmt.Errorf("decode growth response: %w", err)
	}
	log.Info(ctx, "dashboard read back",
		logger.Int("usersCount", growth.UsersCount),
		logger.Int("promptCount", growth.PromptCount),
		logger.Int("conversationCount", growth.ConversationCount),
	)

	if len(accounts) == 0 {
		return nil
	}
	status, _, err = c.get(ctx, cfg.BaseURL+"/leaderboard?email="+accounts[0].Email)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("leaderboard read: status %d, %w", status, err)
	}
	return nil
}

// isSoftSuccess reports whether a soft envelope carries success=true.
func isSoftSuccess(body []byte) bool {
	var envelope struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	return envelope.Success
}
