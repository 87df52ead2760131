package activitywatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meghashyamc/awquery/logger"
)

const maxErrorBodyBytes = 512

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a client for the REST API rooted at baseURL (e.g. http://localhost:5600/api/0).
// A zero timeout leaves requests bounded only by their context.
func New(logger logger.Logger, baseURL string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		logger.Error("invalid activitywatch url", "url", baseURL, "err", err.Error())
		return nil, fmt.Errorf("invalid activitywatch url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		logger.Error("invalid activitywatch url scheme", "url", baseURL)
		return nil, fmt.Errorf("invalid activitywatch url %q: scheme must be http or https", baseURL)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

func (c *Client) ListBuckets(ctx context.Context) (map[string]Bucket, error) {
	buckets := map[string]Bucket{}
	if err := c.getJSON(ctx, "/buckets", nil, &buckets); err != nil {
		return nil, err
	}

	return buckets, nil
}

// RecentEvents returns up to limit events of a bucket, most recent first.
func (c *Client) RecentEvents(ctx context.Context, bucketID string, limit int) ([]Event, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	return c.getEvents(ctx, bucketID, query)
}

// EventsAt returns the events of a bucket whose timestamp falls in [timestamp, timestamp].
func (c *Client) EventsAt(ctx context.Context, bucketID string, timestamp string, limit int) ([]Event, error) {
	query := url.Values{}
	query.Set("start", timestamp)
	query.Set("end", timestamp)
	query.Set("limit", strconv.Itoa(limit))

	return c.getEvents(ctx, bucketID, query)
}

func (c *Client) getEvents(ctx context.Context, bucketID string, query url.Values) ([]Event, error) {
	events := []Event{}
	path := fmt.Sprintf("/buckets/%s/events", url.PathEscape(bucketID))
	if err := c.getJSON(ctx, path, query, &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("could not build activitywatch request", "url", endpoint, "err", err.Error())
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("activitywatch request", "url", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("activitywatch request failed", "url", endpoint, "err", err.Error())
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Error("activitywatch returned an error status", "url", endpoint, "status", resp.StatusCode)
		return &StatusError{
			StatusCode: resp.StatusCode,
			URL:        endpoint,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("could not decode activitywatch response", "url", endpoint, "err", err.Error())
		return fmt.Errorf("%w: could not decode response from %s: %w", ErrUpstream, endpoint, err)
	}

	return nil
}
