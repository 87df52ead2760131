package search

import (
	"log/slog"
	"os"
	"testing"

	"github.com/meghashyamc/awquery/activitywatch"
	"github.com/meghashyamc/awquery/db/kvdb"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testWindowBucket      = "aw-watcher-window_host"
	testOtherWindowBucket = "aw-watcher-window_laptop"
	testAFKBucket         = "aw-watcher-afk_host"
)

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

// setupTestService wires a Service to a fake ActivityWatch holding a few window events.
func setupTestService(t *testing.T, assert *require.Assertions, store kvdb.DB) (*Service, *testutil.FakeActivityWatch) {
	fake := testutil.NewFakeActivityWatch(t)
	fake.AddBucket(testWindowBucket, activitywatch.BucketTypeWindow)
	fake.AddBucket(testOtherWindowBucket, activitywatch.BucketTypeWindow)
	fake.AddBucket(testAFKBucket, "afkstatus")

	fake.AddEvent(testWindowBucket, testutil.WindowEvent(3, "2024-01-01T10:10:00Z", "firefox", "Go documentation - Mozilla Firefox"))
	fake.AddEvent(testWindowBucket, testutil.WindowEvent(2, "2024-01-01T10:05:00Z", "code", "search.go - awquery - Visual Studio Code"))
	fake.AddEvent(testWindowBucket, testutil.WindowEvent(1, "2024-01-01T10:00:00Z", "kitty", "Terminal — bash"))
	fake.AddEvent(testOtherWindowBucket, testutil.WindowEvent(7, "2024-01-02T09:00:00Z", "firefox", "GitHub - Mozilla Firefox"))
	fake.AddEvent(testOtherWindowBucket, testutil.WindowEvent(6, "2024-01-02T08:00:00Z", "kitty", "terminal — htop"))
	fake.AddEvent(testAFKBucket, map[string]any{"timestamp": "2024-01-01T10:00:00Z", "data": map[string]any{"status": "terminal"}})

	return newTestService(t, assert, fake, store), fake
}

func newTestService(t *testing.T, assert *require.Assertions, fake *testutil.FakeActivityWatch, store kvdb.DB) *Service {
	testLogger := newTestLogger()

	client, err := activitywatch.New(testLogger, fake.URL(), 0)
	assert.NoError(err, "could not create activitywatch client")

	cache, err := NewResultCache(testLogger, 100, store)
	assert.NoError(err, "could not create result cache")

	return New(testLogger, client, cache)
}

func resultIDs(results []Result) []string {
	ids := []string{}
	for _, result := range results {
		ids = append(ids, result.ID)
	}
	return ids
}
