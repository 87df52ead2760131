package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meghashyamc/awquery/activitywatch"
)

const ContentTypeText = "text"

// Request carries the arguments of one search, from either the tool call or the REST mirror.
type Request struct {
	Query  string `json:"query" form:"query" validate:"valid_query,max=1000"`
	Limit  int    `json:"limit" form:"limit" validate:"min=1"`
	Cursor string `json:"cursor" form:"cursor"`
}

type Result struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Response struct {
	Results    []Result `json:"results"`
	NextCursor *string  `json:"next_cursor"`
}

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type FetchResult struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Content []Content `json:"content"`
}

// Entry is what the result cache holds for one composite id.
type Entry struct {
	ID       string              `json:"id"`
	BucketID string              `json:"bucket_id"`
	Event    activitywatch.Event `json:"event"`
}

// CompositeID identifies an event as "<bucket_id>:<timestamp>".
func CompositeID(bucketID string, timestamp string) string {
	return bucketID + ":" + timestamp
}

func EventURL(bucketID string, timestamp string) string {
	return fmt.Sprintf("activitywatch://%s/%s", bucketID, timestamp)
}

// ParseID splits a composite id on its first colon and checks the timestamp is an RFC 3339 instant.
func ParseID(id string) (string, string, error) {
	bucketID, timestamp, found := strings.Cut(id, ":")
	if !found {
		return "", "", &InvalidIDError{ID: id, Reason: "missing ':' separator"}
	}
	if len(bucketID) == 0 {
		return "", "", &InvalidIDError{ID: id, Reason: "empty bucket id"}
	}
	if _, err := time.Parse(time.RFC3339Nano, timestamp); err != nil {
		return "", "", &InvalidIDError{ID: id, Reason: "timestamp is not a valid instant"}
	}

	return bucketID, timestamp, nil
}

// DecodeCursor turns a cursor into an offset. Anything that is not a non-negative integer is offset 0.
func DecodeCursor(cursor string) int {
	offset, err := strconv.Atoi(strings.TrimSpace(cursor))
	if err != nil || offset < 0 {
		return 0
	}

	return offset
}

func EncodeCursor(offset int) string {
	return strconv.Itoa(offset)
}
