package events

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType describes the kind of change notification.
type EventType string

const (
	Changed   EventType = "Changed"   // a command applied
	Pulse     EventType = "Pulse"     // periodic refresh while stepping
	Loaded    EventType = "Loaded"    // state replaced from storage
	Recovered EventType = "Recovered" // corrupt save discarded, fresh run
	Prestiged EventType = "Prestiged"
	Offline   EventType = "Offline" // offline catch-up granted
)

// Event is one change notification.
type Event struct {
	ID      uuid.UUID
	At      time.Time
	Command string
	Type    EventType
	Data    any
}

// New constructs an Event with a fresh id.
func New(at time.Time, command string, eventType EventType, data any) Event {
	return Event{
		ID:      uuid.New(),
		At:      at,
		Command: command,
		Type:    eventType,
		Data:    data,
	}
}

// Bus is an explicit observer list.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers ev to every subscriber in subscription order.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Len is the number of subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
