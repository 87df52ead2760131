package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/awquery/activitywatch"
)

// FakeActivityWatch serves the subset of the ActivityWatch REST API the adapter uses.
type FakeActivityWatch struct {
	server *httptest.Server

	mu       sync.Mutex
	buckets  map[string]activitywatch.Bucket
	events   map[string][]map[string]any
	failures map[string]int
	delays   map[string]time.Duration
	requests []string
}

func NewFakeActivityWatch(t *testing.T) *FakeActivityWatch {
	t.Helper()

	fake := &FakeActivityWatch{
		buckets:  map[string]activitywatch.Bucket{},
		events:   map[string][]map[string]any{},
		failures: map[string]int{},
		delays:   map[string]time.Duration{},
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(fake.recordRequest())
	router.GET("/api/0/buckets", fake.handleBuckets)
	router.GET("/api/0/buckets/:id/events", fake.handleEvents)

	fake.server = httptest.NewServer(router)
	t.Cleanup(fake.server.Close)

	return fake
}

// URL is the API base URL, in the form the client expects.
func (f *FakeActivityWatch) URL() string {
	return f.server.URL + "/api/0"
}

func (f *FakeActivityWatch) AddBucket(id string, bucketType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[id] = activitywatch.Bucket{ID: id, Type: bucketType, Client: bucketType, Hostname: "testhost"}
}

// AddEvent appends an event to a bucket. Events are served in insertion order, so add the most recent first.
func (f *FakeActivityWatch) AddEvent(bucketID string, event map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[bucketID] = append(f.events[bucketID], event)
}

func (f *FakeActivityWatch) RemoveEvents(bucketID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.events, bucketID)
}

// FailWith makes every request for bucketID (or for the bucket list when bucketID is empty) answer with status.
func (f *FakeActivityWatch) FailWith(bucketID string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[bucketID] = status
}

func (f *FakeActivityWatch) Delay(bucketID string, delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[bucketID] = delay
}

func (f *FakeActivityWatch) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *FakeActivityWatch) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func WindowEvent(id int, timestamp string, app string, title string) map[string]any {
	return map[string]any{
		"id":        id,
		"timestamp": timestamp,
		"duration":  12.5,
		"data": map[string]any{
			"app":   app,
			"title": title,
		},
	}
}

func (f *FakeActivityWatch) recordRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		f.mu.Lock()
		f.requests = append(f.requests, c.Request.URL.RequestURI())
		f.mu.Unlock()
		c.Next()
	}
}

func (f *FakeActivityWatch) handleBuckets(c *gin.Context) {
	f.mu.Lock()
	status, failing := f.failures[""]
	buckets := make(map[string]activitywatch.Bucket, len(f.buckets))
	for id, bucket := range f.buckets {
		buckets[id] = bucket
	}
	f.mu.Unlock()

	if failing {
		c.String(status, "bucket listing failed")
		return
	}
	c.JSON(http.StatusOK, buckets)
}

func (f *FakeActivityWatch) handleEvents(c *gin.Context) {
	bucketID := c.Param("id")

	f.mu.Lock()
	status, failing := f.failures[bucketID]
	delay := f.delays[bucketID]
	_, exists := f.buckets[bucketID]
	events := append([]map[string]any(nil), f.events[bucketID]...)
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failing {
		c.String(status, "event query failed")
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "There's no bucket named " + bucketID})
		return
	}

	if start := c.Query("start"); len(start) > 0 {
		events = eventsBetween(events, start, c.Query("end"))
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit >= 0 && limit < len(events) {
		events = events[:limit]
	}

	c.JSON(http.StatusOK, events)
}

func eventsBetween(events []map[string]any, start string, end string) []map[string]any {
	startTime, err := time.Parse(time.RFC3339Nano, start)
	if err != nil {
		return nil
	}
	endTime, err := time.Parse(time.RFC3339Nano, end)
	if err != nil {
		return nil
	}

	matched := []map[string]any{}
	for _, event := range events {
		timestamp, _ := event["timestamp"].(string)
		eventTime, err := time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			continue
		}
		if !eventTime.Before(startTime) && !eventTime.After(endTime) {
			matched = append(matched, event)
		}
	}

	return matched
}
