package activitywatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/meghashyamc/awquery/activitywatch"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/testutil"
	"github.com/stretchr/testify/require"
)

const windowBucket = "aw-watcher-window_testhost"

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func newTestClient(assert *require.Assertions, baseURL string) *activitywatch.Client {
	client, err := activitywatch.New(newTestLogger(), baseURL, 0)
	assert.NoError(err, "could not create activitywatch client")
	return client
}

func TestNewRejectsInvalidURL(t *testing.T) {
	for _, baseURL := range []string{"localhost:5600", "ftp://localhost/api/0", "http://[::1"} {
		t.Run(baseURL, func(t *testing.T) {
			assert := require.New(t)
			_, err := activitywatch.New(newTestLogger(), baseURL, 0)
			assert.Error(err)
		})
	}
}

func TestListBuckets(t *testing.T) {
	assert := require.New(t)
	fake := testutil.NewFakeActivityWatch(t)
	fake.AddBucket(windowBucket, activitywatch.BucketTypeWindow)
	fake.AddBucket("aw-watcher-afk_testhost", "afkstatus")

	client := newTestClient(assert, fake.URL())
	buckets, err := client.ListBuckets(context.Background())
	assert.NoError(err)
	assert.Len(buckets, 2)
	assert.Equal(activitywatch.BucketTypeWindow, buckets[windowBucket].Type)
	assert.Equal("afkstatus", buckets["aw-watcher-afk_testhost"].Type)
	assert.Equal([]string{"/api/0/buckets"}, fake.Requests())
}

func TestRecentEventsSendsLimit(t *testing.T) {
	assert := require.New(t)
	fake := testutil.NewFakeActivityWatch(t)
	fake.AddBucket(windowBucket, activitywatch.BucketTypeWindow)
	fake.AddEvent(windowBucket, testutil.WindowEvent(2, "2024-01-01T10:05:00Z", "firefox", "Docs"))
	fake.AddEvent(windowBucket, testutil.WindowEvent(1, "2024-01-01T10:00:00Z", "kitty", "Terminal"))

	client := newTestClient(assert, fake.URL())
	events, err := client.RecentEvents(context.Background(), windowBucket, 1)
	assert.NoError(err)
	assert.Len(events, 1)
	assert.Equal("2024-01-01T10:05:00Z", events[0].Timestamp)
	assert.Equal("Docs", events[0].Title)
	assert.Equal([]string{"/api/0/buckets/" + windowBucket + "/events?limit=1"}, fake.Requests())
}

func TestEventsAt(t *testing.T) {
	assert := require.New(t)
	fake := testutil.NewFakeActivityWatch(t)
	fake.AddBucket(windowBucket, activitywatch.BucketTypeWindow)
	fake.AddEvent(windowBucket, testutil.WindowEvent(2, "2024-01-01T10:05:00Z", "firefox", "Docs"))
	fake.AddEvent(windowBucket, testutil.WindowEvent(1, "2024-01-01T10:00:00Z", "kitty", "Terminal"))

	client := newTestClient(assert, fake.URL())
	events, err := client.EventsAt(context.Background(), windowBucket, "2024-01-01T10:00:00Z", 1)
	assert.NoError(err)
	assert.Len(events, 1)
	assert.Equal("Terminal", events[0].Title)

	events, err = client.EventsAt(context.Background(), windowBucket, "2023-01-01T00:00:00Z", 1)
	assert.NoError(err)
	assert.Empty(events)
}

func TestErrorStatusIsUpstreamError(t *testing.T) {
	assert := require.New(t)
	fake := testutil.NewFakeActivityWatch(t)
	fake.AddBucket(windowBucket, activitywatch.BucketTypeWindow)
	fake.FailWith(windowBucket, http.StatusInternalServerError)

	client := newTestClient(assert, fake.URL())
	_, err := client.RecentEvents(context.Background(), windowBucket, 500)
	assert.Error(err)
	assert.True(errors.Is(err, activitywatch.ErrUpstream))

	var statusErr *activitywatch.StatusError
	assert.True(errors.As(err, &statusErr))
	assert.Equal(http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(statusErr.Error(), "event query failed")
}

func TestConnectionFailureIsUpstreamError(t *testing.T) {
	assert := require.New(t)
	client := newTestClient(assert, "http://127.0.0.1:1/api/0")

	_, err := client.ListBuckets(context.Background())
	assert.Error(err)
	assert.True(errors.Is(err, activitywatch.ErrUpstream))
}

func TestCancelledContext(t *testing.T) {
	assert := require.New(t)
	fake := testutil.NewFakeActivityWatch(t)
	client := newTestClient(assert, fake.URL())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ListBuckets(ctx)
	assert.Error(err)
	assert.True(errors.Is(err, context.Canceled))
}

func TestEventKeepsDocumentVerbatim(t *testing.T) {
	assert := require.New(t)
	raw := `{"id": 9007199254740993, "timestamp": "2024-01-01T10:00:00.123000+00:00", "duration": 1.5,
		"data": {"app": "kitty", "title": "vim <main.go> & more", "extra": [1, 2]}}`

	var event activitywatch.Event
	assert.NoError(json.Unmarshal([]byte(raw), &event))
	assert.Equal("2024-01-01T10:00:00.123000+00:00", event.Timestamp)
	assert.Equal("vim <main.go> & more", event.Title)

	indented, err := event.Indented()
	assert.NoError(err)
	assert.Contains(indented, `"id": 9007199254740993`)
	assert.Contains(indented, `"title": "vim <main.go> & more"`)
	assert.Contains(indented, "\n  \"data\": {")

	encoded, err := json.Marshal(event)
	assert.NoError(err)
	var decoded activitywatch.Event
	assert.NoError(json.Unmarshal(encoded, &decoded))
	assert.Equal(event.Timestamp, decoded.Timestamp)
	assert.Equal(event.Title, decoded.Title)
}

func TestEventWithoutTitle(t *testing.T) {
	assert := require.New(t)

	var event activitywatch.Event
	assert.NoError(json.Unmarshal([]byte(`{"timestamp": "2024-01-01T10:00:00Z", "data": {"app": "kitty"}}`), &event))
	assert.Empty(event.Title)

	assert.Error(json.Unmarshal([]byte(`[1, 2]`), &event))
}
