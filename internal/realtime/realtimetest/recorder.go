// Package realtimetest offers a Publisher that records what it is asked to publish.
package realtimetest

import (
	"context"
	"sync"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/realtime"
)

// Published is one recorded Publish call.
type Published struct {
	Channel realtime.Channel
	Event   realtime.Event
}

// Recorder implements realtime.Publisher.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

// Publish records the call.
func (r *Recorder) Publish(_ context.Context, ch realtime.Channel, ev realtime.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Channel: ch, Event: ev})
}

// Events returns a copy of every recorded call in publish order.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

// Named returns the recorded calls whose event has the given name.
func (r *Recorder) Named(name string) []Published {
	var out []Published
	for _, p := range r.Events() {
		if p.Event.Name() == name {
			out = append(out, p)
		}
	}
	return out
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
