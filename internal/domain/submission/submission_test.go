package submission_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/internal/domain/submission"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeFetcher serves canned threads keyed by content ID.
type fakeFetcher struct {
	threads map[string]model.Thread
	calls   int
}

func (f *fakeFetcher) FetchThread(_ context.Context, contentID string) (model.Thread, error) {
	f.calls++
	t, ok := f.threads[contentID]
	if !ok {
		return model.Thread{}, fmt.Errorf("thread %s: %w", contentID, fault.ErrUpstreamUnavailable)
	}
	return t, nil
}

// fakeContents is an in-memory content store with atomic append.
type fakeContents struct {
	mu   sync.Mutex
	subs map[string][]model.Submission
}

func newFakeContents() *fakeContents {
	return &fakeContents{subs: make(map[string][]model.Submission)}
}

func (c *fakeContents) ListByOwner(_ context.Context, ownerID string) ([]model.Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Submission, len(c.subs[ownerID]))
	copy(out, c.subs[ownerID])
	return out, nil
}

func (c *fakeContents) Append(_ context.Context, ownerID string, sub model.Submission) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, prior := range c.subs[ownerID] {
		if prior.ContentID == sub.ContentID {
			return fmt.Errorf("content %s: %w", sub.ContentID, fault.ErrConflict)
		}
	}
	c.subs[ownerID] = append(c.subs[ownerID], sub)
	return nil
}

// fakeDirectory maps owners to linked social IDs.
type fakeDirectory map[string]string

func (d fakeDirectory) SocialID(_ context.Context, ownerID string) (string, error) {
	return d[ownerID], nil
}

func fixture() (*fakeFetcher, *fakeContents, fakeDirectory) {
	fetcher := &fakeFetcher{threads: map[string]model.Thread{
		"42": {
			ContentID:  "42",
			AuthorID:   "author-1",
			ScreenName: "alice",
			Text:       "shipping the growth dashboard",
			CreatedAt:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}}
	return fetcher, newFakeContents(), fakeDirectory{"alice@example.com": "author-1"}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a validator with default hosts", t, func() {
		fetcher, contents, users := fixture()
		v := submission.NewValidator(fetcher, contents, users)

		Convey("When submitting a well-formed URL from the owner's account", func() {
			res, err := v.Validate(ctx, "alice@example.com", "https://x.com/alice/status/42?x=1")

			Convey("Then it is accepted with zeroed score components", func() {
				So(err, ShouldBeNil)
				So(res.Accepted(), ShouldBeTrue)
				So(res.Submission, ShouldNotBeNil)
				So(res.Submission.ContentID, ShouldEqual, "42")
				So(res.Submission.Total, ShouldEqual, 0)
				So(res.Submission.Base, ShouldEqual, 0)
				So(res.Submission.Status, ShouldEqual, model.StatusAccepted)
			})

			Convey("Then the stored URL is canonicalized", func() {
				So(res.Submission.SourceURL, ShouldEqual, "https://x.com/alice/status/42")
			})

			Convey("Then the submission lands in the owner's collection", func() {
				listed, _ := contents.ListByOwner(ctx, "alice@example.com")
				So(listed, ShouldHaveLength, 1)
			})
		})

		Convey("When the host is not on the allow list", func() {
			res, err := v.Validate(ctx, "alice@example.com", "https://example.com/alice/status/42")

			Convey("Then it is rejected as an invalid URL before any fetch", func() {
				So(err, ShouldBeNil)
				So(res.State, ShouldEqual, submission.StateRejected)
				So(res.Reason, ShouldEqual, submission.ReasonInvalidURL)
				So(fetcher.calls, ShouldEqual, 0)
			})
		})

		Convey("When the path shape is wrong", func() {
			for _, raw := range []string{
				"https://x.com/alice/statuses/42",
				"https://x.com/alice/status/42/photo",
				"https://x.com/status/42",
				"https://x.com/alice/status/abc",
				"https://x.com/alice/status/",
				"ftp://x.com/alice/status/42",
				"not a url",
			} {
				res, err := v.Validate(ctx, "alice@example.com", raw)
				So(err, ShouldBeNil)
				So(res.Reason, ShouldEqual, submission.ReasonInvalidURL)
			}
		})

		Convey("When resubmitting content the owner already holds", func() {
			first, _ := v.Validate(ctx, "alice@example.com", "https://x.com/alice/status/42")
			So(first.Accepted(), ShouldBeTrue)
			fetchesBefore := fetcher.calls

			res, err := v.Validate(ctx, "alice@example.com", "https://twitter.com/alice/status/42/")

			Convey("Then it is rejected as duplicate without a second fetch", func() {
				So(err, ShouldBeNil)
				So(res.Reason, ShouldEqual, submission.ReasonDuplicateContent)
				So(fetcher.calls, ShouldEqual, fetchesBefore)
			})
		})

		Convey("When the canonical fetched ID collides with prior content", func() {
			// URL says 43 but the canonical thread resolves to 42.
			fetcher.threads["43"] = model.Thread{
				ContentID: "42", AuthorID: "author-1", ScreenName: "alice",
			}
			first, _ := v.Validate(ctx, "alice@example.com", "https://x.com/alice/status/42")
			So(first.Accepted(), ShouldBeTrue)

			res, err := v.Validate(ctx, "alice@example.com", "https://x.com/alice/status/43")

			Convey("Then the post-fetch duplicate check rejects it", func() {
				So(err, ShouldBeNil)
				So(res.Reason, ShouldEqual, submission.ReasonDuplicateContent)
			})
		})

		Convey("When the external fetch fails", func() {
			res, err := v.Validate(ctx, "alice@example.com", "https://x.com/alice/status/404")

			Convey("Then it is rejected as a retryable fetch failure", func() {
				So(err, ShouldBeNil)
				So(res.Reason, ShouldEqual, submission.ReasonFetchFailure)
				So(fault.Retryable(res.Reason.Kind()), ShouldBeTrue)
			})
		})

		Convey("When the thread author is not the owner's linked account", func() {
			res, err := v.Validate(ctx, "bob@example.com", "https://x.com/alice/status/42")

			Convey("Then it is rejected as an ownership mismatch", func() {
				So(err, ShouldBeNil)
				So(res.Reason, ShouldEqual, submission.ReasonOwnershipMismatch)
			})
		})

		Convey("When two goroutines race on the same content", func() {
			var wg sync.WaitGroup
			results := make([]submission.Result, 2)
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					res, _ := v.Validate(ctx, "alice@example.com", "https://x.com/alice/status/42")
					results[i] = res
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one append wins", func() {
				accepted := 0
				for _, res := range results {
					if res.Accepted() {
						accepted++
					} else {
						So(res.Reason, ShouldEqual, submission.ReasonDuplicateContent)
					}
				}
				So(accepted, ShouldEqual, 1)
				listed, _ := contents.ListByOwner(ctx, "alice@example.com")
				So(listed, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given a validator with a custom allow list and clock", t, func() {
		fetcher, contents, users := fixture()
		fixed := time.Date(2024, 5, 1, 12, 0, 0, 500, time.UTC)
		v := submission.NewValidator(fetcher, contents, users,
			submission.WithAllowedHosts("social.example"),
			submission.WithClock(func() time.Time { return fixed }),
			submission.WithIDGenerator(func() string { return "sub-1" }),
		)

		Convey("When submitting from the overridden host", func() {
			res, err := v.Validate(ctx, "alice@example.com", "https://social.example/alice/status/42")

			Convey("Then it is accepted with deterministic ID and posted-at", func() {
				So(err, ShouldBeNil)
				So(res.Accepted(), ShouldBeTrue)
				So(res.Submission.ID, ShouldEqual, "sub-1")
				So(res.Submission.PostedAt, ShouldEqual, fixed.Truncate(time.Second))
			})
		})

		Convey("When submitting from the default hosts", func() {
			res, _ := v.Validate(ctx, "alice@example.com", "https://x.com/alice/status/42")

			Convey("Then they are no longer allowed", func() {
				So(res.Reason, ShouldEqual, submission.ReasonInvalidURL)
			})
		})
	})
}

func TestParseContentID(t *testing.T) {
	hosts := map[string]struct{}{"x.com": {}, "twitter.com": {}}

	Convey("Given the default host allow list", t, func() {
		Convey("Query strings and trailing slashes do not affect the ID", func() {
			for _, raw := range []string{
				"https://x.com/alice/status/42",
				"https://x.com/alice/status/42?x=1&utm=abc",
				"https://x.com/alice/status/42/",
				"https://twitter.com/alice/status/42",
			} {
				id, ok := submission.ParseContentID(raw, hosts)
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, "42")
			}
		})

		Convey("Non-numeric trailing segments are rejected", func() {
			_, ok := submission.ParseContentID("https://x.com/alice/status/42abc", hosts)
			So(ok, ShouldBeFalse)
		})
	})
}

// erroring store exercises the persistence failure path.
type errStore struct{}

func (errStore) ListByOwner(context.Context, string) ([]model.Submission, error) {
	return nil, errors.New("disk on fire")
}

func (errStore) Append(context.Context, string, model.Submission) error {
	return errors.New("disk on fire")
}

func TestValidatePersistenceFailure(t *testing.T) {
	Convey("Given a content store that fails", t, func() {
		fetcher, _, users := fixture()
		v := submission.NewValidator(fetcher, errStore{}, users)

		Convey("When validating an otherwise good URL", func() {
			res, err := v.Validate(context.Background(), "alice@example.com", "https://x.com/alice/status/42")

			Convey("Then the failure surfaces as a persistence error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, fault.ErrPersistence), ShouldBeTrue)
				So(res.State, ShouldEqual, submission.StateRejected)
			})
		})
	})
}
