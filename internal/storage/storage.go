package storage

import "time"

// Event is one journaled exchange. The journal keeps every exchange, unlike
// the capped conversation history in memory.
// Events are expected to be appended in chronological order.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Channel   string    `json:"channel"`
	UserID    int64     `json:"user_id,omitempty"`
	Utterance string    `json:"utterance"`
	Response  string    `json:"response"`
	Intent    string    `json:"intent"`
	Failed    bool      `json:"failed,omitempty"`
}

// Recorder abstracts persistence of interaction events.
// LoadInteractions should return events in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
