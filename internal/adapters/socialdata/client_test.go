package socialdata_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edithlab/growthboard/internal/adapters/socialdata"
	"github.com/edithlab/growthboard/internal/domain/fault"
	. "github.com/smartystreets/goconvey/convey"
)

const threadBody = `{
	"tweets": [
		{
			"id": 1770000000000000001,
			"full_text": "shipping season",
			"tweet_created_at": "2024-04-01T10:30:00.000000Z",
			"user": {"id": 900000001, "screen_name": "alice"}
		},
		{
			"id": 1770000000000000002,
			"full_text": "reply noise",
			"tweet_created_at": "2024-04-01T11:00:00.000000Z",
			"user": {"id": 900000002, "screen_name": "bob"}
		}
	]
}`

func TestFetchThread(t *testing.T) {
	ctx := context.Background()

	Convey("Given a healthy provider", t, func() {
		var gotPath, gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(threadBody))
		}))
		defer srv.Close()

		client := socialdata.NewClient("secret-token", socialdata.WithBaseURL(srv.URL))

		Convey("When fetching a thread", func() {
			thread, err := client.FetchThread(ctx, "1770000000000000001")

			Convey("Then the head post is returned", func() {
				So(err, ShouldBeNil)
				So(thread.ContentID, ShouldEqual, "1770000000000000001")
				So(thread.AuthorID, ShouldEqual, "900000001")
				So(thread.ScreenName, ShouldEqual, "alice")
				So(thread.Text, ShouldEqual, "shipping season")
				So(thread.CreatedAt, ShouldHappenOnOrAfter, time.Date(2024, 4, 1, 10, 30, 0, 0, time.UTC))
			})

			Convey("Then the request hits the thread route with bearer auth", func() {
				So(gotPath, ShouldEqual, "/twitter/thread/1770000000000000001")
				So(gotAuth, ShouldEqual, "Bearer secret-token")
			})
		})
	})

	Convey("Given a provider answering with errors", t, func() {
		Convey("When the provider returns a server error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer srv.Close()

			client := socialdata.NewClient("t", socialdata.WithBaseURL(srv.URL))
			_, err := client.FetchThread(ctx, "1")

			Convey("Then the failure is upstream and retryable", func() {
				So(errors.Is(err, socialdata.ErrRequestFailed), ShouldBeTrue)
				So(errors.Is(err, fault.ErrUpstreamUnavailable), ShouldBeTrue)
				So(fault.Retryable(err), ShouldBeTrue)
			})
		})

		Convey("When the provider returns an empty thread", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"tweets": []}`))
			}))
			defer srv.Close()

			client := socialdata.NewClient("t", socialdata.WithBaseURL(srv.URL))
			_, err := client.FetchThread(ctx, "1")

			So(errors.Is(err, socialdata.ErrEmptyThread), ShouldBeTrue)
		})

		Convey("When the provider returns garbage", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			}))
			defer srv.Close()

			client := socialdata.NewClient("t", socialdata.WithBaseURL(srv.URL))
			_, err := client.FetchThread(ctx, "1")

			So(errors.Is(err, socialdata.ErrMalformedPayload), ShouldBeTrue)
		})

		Convey("When the provider is unreachable", func() {
			client := socialdata.NewClient("t",
				socialdata.WithBaseURL("http://127.0.0.1:1"),
				socialdata.WithTimeout(500*time.Millisecond))
			_, err := client.FetchThread(ctx, "1")

			So(errors.Is(err, fault.ErrUpstreamUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given legacy provider timestamps", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"tweets": [{"id": "7", "full_text": "old", "tweet_created_at": "Mon Apr 01 10:30:00 +0000 2024", "user": {"id": "9", "screen_name": "carol"}}]}`))
		}))
		defer srv.Close()

		client := socialdata.NewClient("t", socialdata.WithBaseURL(srv.URL))

		Convey("When fetching, the classic layout still parses", func() {
			thread, err := client.FetchThread(ctx, "7")
			So(err, ShouldBeNil)
			So(thread.CreatedAt.Equal(time.Date(2024, 4, 1, 10, 30, 0, 0, time.UTC)), ShouldBeTrue)
		})
	})
}
