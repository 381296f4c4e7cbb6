package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventWorkspaceCreated EventType = "workspace.created"
	EventDocumentCreated  EventType = "document.created"
	EventDocumentUpdated  EventType = "document.updated"
	EventDocumentDeleted  EventType = "document.deleted"
	EventCommentCreated   EventType = "comment.created"
	EventCommentUpdated   EventType = "comment.updated"
	EventCommentDeleted   EventType = "comment.deleted"
	EventLockAcquired     EventType = "lock.acquired"
	EventLockRenewed      EventType = "lock.renewed"
	EventLockReleased     EventType = "lock.released"
)

// Event is a workspace-scoped change notification streamed to subscribers.
type Event struct {
	Type        EventType      `json:"type"`
	WorkspaceID string         `json:"workspace_id"`
	Timestamp   time.Time      `json:"timestamp"`
	Data        map[string]any `json:"data,omitempty"`
}

// subscriberBuffer bounds how far a slow consumer may fall behind before its
// oldest events are dropped.
const subscriberBuffer = 64

// Subscription is a live feed of one workspace's events. Events published
// before Subscribe returned are never delivered. Close unregisters the
// subscription and closes C.
type Subscription struct {
	C <-chan *Event

	bus         *Bus
	workspaceID string
	id          int
	ch          chan *Event
	lag         atomic.Uint64
	closeOnce   sync.Once
}

// TakeLag returns the number of events dropped for this subscriber since the
// last call, resetting the counter.
func (s *Subscription) TakeLag() uint64 {
	return s.lag.Swap(0)
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.bus.unsubscribe(s)
	})
}

// Bus fans events out to the live subscribers of each workspace. Publishing
// never blocks: with no subscribers it is a no-op, and a full subscriber
// buffer loses its oldest event instead of stalling the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[int]*Subscription
	nextID int
	closed bool
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]*Subscription)}
}

// Subscribe registers a new subscriber for workspaceID.
func (b *Bus) Subscribe(workspaceID string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		bus:         b,
		workspaceID: workspaceID,
		id:          b.nextID,
		ch:          make(chan *Event, subscriberBuffer),
	}
	sub.C = sub.ch

	if b.closed {
		close(sub.ch)
		return sub
	}

	ws, ok := b.subs[workspaceID]
	if !ok {
		ws = make(map[int]*Subscription)
		b.subs[workspaceID] = ws
	}
	ws[sub.id] = sub
	return sub
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	ws, ok := b.subs[sub.workspaceID]
	if !ok {
		return
	}
	if _, ok := ws[sub.id]; !ok {
		return
	}
	delete(ws, sub.id)
	if len(ws) == 0 {
		delete(b.subs, sub.workspaceID)
	}
	close(sub.ch)
}

// Publish delivers event to every subscriber of workspaceID. Sets the
// timestamp if unset.
func (b *Bus) Publish(workspaceID string, event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.WorkspaceID = workspaceID

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs[workspaceID] {
		select {
		case sub.ch <- event:
			continue
		default:
		}
		// Buffer full: drop the oldest so the tail stays current.
		select {
		case <-sub.ch:
			sub.lag.Add(1)
		default:
		}
		select {
		case sub.ch <- event:
		default:
			sub.lag.Add(1)
		}
	}
}

// SubscriberCount returns the number of live subscribers for a workspace.
func (b *Bus) SubscriberCount(workspaceID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[workspaceID])
}

// Close shuts down the bus and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ws := range b.subs {
		for _, sub := range ws {
			close(sub.ch)
		}
	}
	b.subs = nil
}
