// Common test helpers
package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/awquery/activitywatch"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/services/search"
	"github.com/meghashyamc/awquery/testutil"
	"github.com/meghashyamc/awquery/validation"
	"github.com/stretchr/testify/require"
)

const (
	testWindowBucket = "aw-watcher-window_laptop"
	testAFKBucket    = "aw-watcher-afk_laptop"
)

type testCase struct {
	name             string
	queryParams      map[string]string
	failBucket       *string
	expectedStatus   int
	expectedResponse map[string]any
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions) (*gin.Engine, *testutil.FakeActivityWatch) {

	fake := testutil.NewFakeActivityWatch(t)
	fake.AddBucket(testWindowBucket, activitywatch.BucketTypeWindow)
	fake.AddBucket(testAFKBucket, "afkstatus")
	fake.AddEvent(testWindowBucket, testutil.WindowEvent(3, "2024-03-01T09:30:00Z", "code", "main.go - awquery - Visual Studio Code"))
	fake.AddEvent(testWindowBucket, testutil.WindowEvent(2, "2024-03-01T09:20:00Z", "firefox", "Go by Example - Mozilla Firefox"))
	fake.AddEvent(testWindowBucket, testutil.WindowEvent(1, "2024-03-01T09:10:00Z", "slack", "Slack | general"))

	testLogger := newTestLogger()

	aw, err := activitywatch.New(testLogger, fake.URL(), 0)
	assert.NoError(err, "could not create activitywatch client")
	cache, err := search.NewResultCache(testLogger, 100, nil)
	assert.NoError(err, "could not create result cache")
	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")
	service := search.New(testLogger, aw, cache)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupSearch(router, testLogger, service, validator)
	SetupFetch(router, testLogger, service)

	return router, fake
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, queryParams map[string]string) *httptest.ResponseRecorder {

	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint)

	req, err := http.NewRequest(method, endpoint, nil)
	assert.NoError(err)

	router.ServeHTTP(w, req)

	return w
}

func stringPtr(s string) *string {
	return &s
}
