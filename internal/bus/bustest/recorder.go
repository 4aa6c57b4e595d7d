// Package bustest provides in-memory bus fakes for tests.
package bustest

import (
	"sync"

	"github.com/Vinyl-Lilith/GreenGiant/internal/bus"
)

// Event is one recorded publish.
type Event struct {
	Topic   string
	Payload any
	Conn    bus.Conn // nil for broadcast publishes
}

// Recorder is a bus.Bus that records every publish for later assertion.
// Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records a broadcast event.
func (r *Recorder) Publish(topic string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Topic: topic, Payload: payload})
}

// PublishTo records a targeted event.
func (r *Recorder) PublishTo(conn bus.Conn, topic string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Topic: topic, Payload: payload, Conn: conn})
}

// Events returns a copy of everything recorded so far, in publish order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByTopic returns recorded events matching the topic, in publish order.
func (r *Recorder) ByTopic(topic string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Conn is a trivial bus.Conn for tests. Close is idempotent and counted.
type Conn struct {
	mu     sync.Mutex
	closed int
}

// NewConn creates a test connection handle.
func NewConn() *Conn {
	return &Conn{}
}

// Close records the teardown.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
}

// Closed reports whether Close has been called at least once.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed > 0
}
