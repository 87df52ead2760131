package activitywatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// BucketTypeWindow marks buckets written by aw-watcher-window.
const BucketTypeWindow = "aw-watcher-window"

type Bucket struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Client   string `json:"client"`
	Hostname string `json:"hostname"`
	Created  string `json:"created"`
}

// Event is an event exactly as ActivityWatch returned it. Only the timestamp and the
// window title are lifted out; everything else stays in Document untouched.
type Event struct {
	Timestamp string
	Title     string
	Document  map[string]any
}

func NewEvent(document map[string]any) Event {
	event := Event{Document: document}
	event.Timestamp, _ = document["timestamp"].(string)
	if data, ok := document["data"].(map[string]any); ok {
		event.Title, _ = data["title"].(string)
	}

	return event
}

func (e *Event) UnmarshalJSON(b []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(b))
	// numbers such as the event id are kept verbatim
	decoder.UseNumber()

	var document map[string]any
	if err := decoder.Decode(&document); err != nil {
		return err
	}
	if document == nil {
		return errors.New("event is not a JSON object")
	}

	*e = NewEvent(document)
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Document)
}

// Indented renders the full event as two-space indented JSON.
func (e Event) Indented() (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(e.Document); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
