package game

import (
	"sync"
	"time"
)

// EventType classifies a narrative event.
type EventType string

const (
	EventTypeHandStart    EventType = "hand_start"
	EventTypeDeal         EventType = "deal"
	EventTypeDealer       EventType = "dealer"
	EventTypeBlind        EventType = "blind"
	EventTypeTurn         EventType = "turn"
	EventTypePlayerAction EventType = "player_action"
	EventTypeStreetChange EventType = "street_change"
	EventTypeShowdown     EventType = "showdown"
	EventTypePayout       EventType = "payout"
	EventTypeTable        EventType = "table"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is a timestamped line of table commentary.
type Event struct {
	Time    time.Time `json:"timestamp"`
	Type    EventType `json:"kind"`
	TableID string    `json:"tableId,omitempty"`
	Message string    `json:"message"`
}

// EventSink receives every event a table emits, in order. Publish is called
// while the table is being mutated and must not call back into the table.
type EventSink interface {
	Publish(Event)
}

// EventSinkFunc adapts a function to an EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Publish(e Event) { f(e) }

type discardSink struct{}

func (discardSink) Publish(Event) {}

// MultiSink fans events out to several sinks.
type MultiSink []EventSink

func (m MultiSink) Publish(e Event) {
	for _, s := range m {
		s.Publish(e)
	}
}

// Recorder is an EventSink that keeps everything it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Messages returns the recorded event messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Message
	}
	return out
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
