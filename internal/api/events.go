package api

import (
	"encoding/json"
	"fmt"
)

// Source is a web citation attached to an answer.
type Source struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// Event is one decoded frame from the answer stream. Exactly one of the
// concrete types below is produced per frame.
type Event interface {
	event()
}

// StartEvent acknowledges the query before any tokens arrive.
type StartEvent struct {
	Query string
}

// TokenEvent carries one fragment of the answer text.
type TokenEvent struct {
	Content string
}

// SourcesEvent carries the citations for the current answer.
type SourcesEvent struct {
	Sources []Source
}

// ErrorEvent reports a server-side failure; the stream usually ends after it.
type ErrorEvent struct {
	Message string
}

// DoneEvent marks the successful end of the stream.
type DoneEvent struct{}

func (StartEvent) event()   {}
func (TokenEvent) event()   {}
func (SourcesEvent) event() {}
func (ErrorEvent) event()   {}
func (DoneEvent) event()    {}

// streamFrame is the wire shape of one SSE data payload. Which fields are
// populated depends on Type.
type streamFrame struct {
	Type    string   `json:"type"`
	Query   string   `json:"query,omitempty"`
	Content string   `json:"content,omitempty"`
	Sources []Source `json:"sources,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ParseEvent turns one frame payload into an Event. A payload with an
// unrecognized type returns (nil, nil) so callers can skip it; malformed
// JSON returns an error. Either way a bad frame never ends the stream.
func ParseEvent(data []byte) (Event, error) {
	var f streamFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing stream frame: %w", err)
	}

	switch f.Type {
	case "start":
		return StartEvent{Query: f.Query}, nil
	case "token":
		return TokenEvent{Content: f.Content}, nil
	case "sources":
		return SourcesEvent{Sources: f.Sources}, nil
	case "error":
		return ErrorEvent{Message: f.Error}, nil
	case "done":
		return DoneEvent{}, nil
	default:
		return nil, nil
	}
}
