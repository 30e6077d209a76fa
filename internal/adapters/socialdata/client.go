// Package socialdata talks to the socialdata.tools HTTP API to resolve
// post threads for submitted content IDs.
package socialdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/pkg/logger"
	"github.com/edithlab/growthboard/pkg/metrics"
)

const (
	// DefaultBaseURL is the production endpoint of the provider.
	DefaultBaseURL = "https://api.socialdata.tools"

	defaultTimeout = 10 * time.Second

	// legacyTimeLayout is the classic Twitter timestamp format some
	// provider responses still carry.
	legacyTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"
)

// Client fetches threads from the social data provider.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout bounds a single thread lookup.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger attaches a named logger to the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a provider client authenticated with the given token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type threadResponse struct {
	Tweets []tweetPayload `json:"tweets"`
}

type tweetPayload struct {
	ID        json.Number `json:"id"`
	FullText  string      `json:"full_text"`
	CreatedAt string      `json:"tweet_created_at"`
	User      struct {
		ID         json.Number `json:"id"`
		ScreenName string      `json:"screen_name"`
	} `json:"user"`
}

// FetchThread looks up the thread rooted at contentID and returns its
// head post. Any transport or decoding problem is reported as an
// upstream failure so callers can treat it as retryable.
func (c *Client) FetchThread(ctx context.Context, contentID string) (model.Thread, error) {
	start := time.Now()
	thread, err := c.fetch(ctx, contentID)
	metrics.RecordContentFetchLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordContentFetchError()
		if c.log != nil {
			c.log.Warn(ctx, "thread fetch failed",
				logger.String("content_id", contentID),
				logger.Error(err))
		}
		return model.Thread{}, err
	}
	return thread, nil
}

func (c *Client) fetch(ctx context.Context, contentID string) (model.Thread, error) {
	url := fmt.Sprintf("%s/twitter/thread/%s", c.baseURL, contentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Thread{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Thread{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return model.Thread{}, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var payload threadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Thread{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(payload.Tweets) == 0 {
		return model.Thread{}, ErrEmptyThread
	}

	head := payload.Tweets[0]
	return model.Thread{
		ContentID:  head.ID.String(),
		AuthorID:   head.User.ID.String(),
		ScreenName: head.User.ScreenName,
		Text:       head.FullText,
		CreatedAt:  parseCreatedAt(head.CreatedAt),
	}, nil
}

func parseCreatedAt(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(legacyTimeLayout, raw); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
