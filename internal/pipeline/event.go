package pipeline

import (
	"sync"
	"time"

	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// EventName is the name of the change notification.
const EventName = "ntx-value-change"

// Trigger records what caused a change event.
type Trigger string

const (
	TriggerRun    Trigger = "run"
	TriggerFetch  Trigger = "fetch"
	TriggerSelect Trigger = "select"
)

// ChangeEvent carries the outcome to the surrounding form.
type ChangeEvent struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Value   jsonvalue.Value `json:"value"`
	Trigger Trigger         `json:"trigger"`
	At      time.Time       `json:"at"`
}

// Emitter receives change events.
type Emitter interface {
	Emit(ChangeEvent)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ChangeEvent)

func (f EmitterFunc) Emit(ev ChangeEvent) {
	f(ev)
}

// Broadcast delivers every event to each emitter in order, the way an event
// bubbles through every ancestor of the widget.
type Broadcast []Emitter

func (b Broadcast) Emit(ev ChangeEvent) {
	for _, e := range b {
		if e != nil {
			e.Emit(ev)
		}
	}
}

// Recorder is an Emitter that keeps every event. It is safe for concurrent
// use.
type Recorder struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (r *Recorder) Emit(ev ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChangeEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Since returns the events recorded after the first n.
func (r *Recorder) Since(n int) []ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n >= len(r.events) {
		return nil
	}
	out := make([]ChangeEvent, len(r.events)-n)
	copy(out, r.events[n:])
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
