package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/meghashyamc/awquery/activitywatch"
	"github.com/meghashyamc/awquery/logger"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimit = 5

	// only this many of the most recent events per bucket are searched
	eventWindow                = 500
	maxConcurrentBucketFetches = 8
)

// Upstream is the part of the ActivityWatch API search and fetch need.
type Upstream interface {
	ListBuckets(ctx context.Context) (map[string]activitywatch.Bucket, error)
	RecentEvents(ctx context.Context, bucketID string, limit int) ([]activitywatch.Event, error)
	EventsAt(ctx context.Context, bucketID string, timestamp string, limit int) ([]activitywatch.Event, error)
}

type Service struct {
	logger   logger.Logger
	upstream Upstream
	cache    *ResultCache
}

func New(logger logger.Logger, upstream Upstream, cache *ResultCache) *Service {
	return &Service{
		logger:   logger,
		upstream: upstream,
		cache:    cache,
	}
}

// Search matches query case-insensitively against the titles of recent window events and
// returns the page starting at cursor. Matches are ordered by bucket id, then by the order
// ActivityWatch returned them in. The match list is recomputed on every call, so a cursor
// only stays exact while the upstream events do not change.
func (s *Service) Search(ctx context.Context, query string, limit int, cursor string) (*Response, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	offset := DecodeCursor(cursor)

	bucketIDs, err := s.windowBuckets(ctx)
	if err != nil {
		return nil, err
	}

	eventsByBucket, err := s.recentEvents(ctx, bucketIDs)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := []Entry{}
	for i, bucketID := range bucketIDs {
		for _, event := range eventsByBucket[i] {
			if len(event.Timestamp) == 0 {
				s.logger.Warn("skipping event without timestamp", "bucket", bucketID)
				continue
			}
			if !strings.Contains(strings.ToLower(event.Title), needle) {
				continue
			}
			matches = append(matches, Entry{
				ID:       CompositeID(bucketID, event.Timestamp),
				BucketID: bucketID,
				Event:    event,
			})
		}
	}

	s.cache.Put(matches...)

	response := &Response{Results: []Result{}}
	if offset < len(matches) {
		remaining := len(matches) - offset
		for _, match := range matches[offset : offset+min(limit, remaining)] {
			response.Results = append(response.Results, resultFor(match))
		}
		if limit < remaining {
			nextCursor := EncodeCursor(offset + limit)
			response.NextCursor = &nextCursor
		}
	}

	s.logger.Debug("search finished", "query", query, "buckets", len(bucketIDs), "matches", len(matches), "offset", offset, "returned", len(response.Results))

	return response, nil
}

// Fetch resolves a composite id to its full event, from the cache when possible and
// otherwise with a point lookup against ActivityWatch.
func (s *Service) Fetch(ctx context.Context, id string) (*FetchResult, error) {
	if entry, ok := s.cache.Get(id); ok {
		s.logger.Debug("fetch served from cache", "id", id)
		return renderFetchResult(id, entry)
	}

	bucketID, timestamp, err := ParseID(id)
	if err != nil {
		s.logger.Warn("could not parse id", "id", id, "err", err.Error())
		return nil, err
	}

	events, err := s.upstream.EventsAt(ctx, bucketID, timestamp, 1)
	if err != nil {
		s.logger.Error("could not look up event", "id", id, "err", err.Error())
		return nil, fmt.Errorf("could not look up event: %w", err)
	}
	if len(events) == 0 {
		s.logger.Info("event not found", "id", id)
		return nil, &NotFoundError{ID: id}
	}

	entry := Entry{ID: id, BucketID: bucketID, Event: events[0]}
	s.cache.Put(entry)

	return renderFetchResult(id, entry)
}

func (s *Service) windowBuckets(ctx context.Context) ([]string, error) {
	buckets, err := s.upstream.ListBuckets(ctx)
	if err != nil {
		s.logger.Error("could not list buckets", "err", err.Error())
		return nil, fmt.Errorf("could not list buckets: %w", err)
	}

	bucketIDs := []string{}
	for id, bucket := range buckets {
		if bucket.Type == activitywatch.BucketTypeWindow {
			bucketIDs = append(bucketIDs, id)
		}
	}
	sort.Strings(bucketIDs)

	return bucketIDs, nil
}

// recentEvents fetches every bucket concurrently. The result is indexed like bucketIDs, so
// ordering does not depend on which request finishes first. Any failure fails the whole call.
func (s *Service) recentEvents(ctx context.Context, bucketIDs []string) ([][]activitywatch.Event, error) {
	eventsByBucket := make([][]activitywatch.Event, len(bucketIDs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentBucketFetches)
	for i, bucketID := range bucketIDs {
		group.Go(func() error {
			events, err := s.upstream.RecentEvents(groupCtx, bucketID, eventWindow)
			if err != nil {
				s.logger.Error("could not fetch bucket events", "bucket", bucketID, "err", err.Error())
				return fmt.Errorf("could not fetch events of bucket %s: %w", bucketID, err)
			}
			eventsByBucket[i] = events
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return eventsByBucket, nil
}

func resultFor(entry Entry) Result {
	return Result{
		ID:    entry.ID,
		Title: entry.Event.Title,
		URL:   EventURL(entry.BucketID, entry.Event.Timestamp),
	}
}

func renderFetchResult(id string, entry Entry) (*FetchResult, error) {
	text, err := entry.Event.Indented()
	if err != nil {
		return nil, fmt.Errorf("could not render event %s: %w", id, err)
	}

	return &FetchResult{
		ID:      id,
		Title:   entry.Event.Title,
		URL:     EventURL(entry.BucketID, entry.Event.Timestamp),
		Content: []Content{{Type: ContentTypeText, Text: text}},
	}, nil
}
