// Package coordinator implements the Run Coordinator (spec.md §4.3,
// component J): it owns the engine and decision pipeline for one
// active run, alternates advance_until_decision/apply_action in a
// single runner goroutine, and fans out every event to subscribers.
package coordinator

import (
	"sync"
	"time"

	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/event"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/model"
	"github.com/KushagraBharti/monopoly-llm-benchmark/internal/obslog"
)

// FrameType enumerates the broadcast frame kinds spec.md §6 defines.
type FrameType string

const (
	FrameHello    FrameType = "HELLO"
	FrameSnapshot FrameType = "SNAPSHOT"
	FrameEvent    FrameType = "EVENT"
	FrameError    FrameType = "ERROR"
)

// Frame is one message delivered to a subscriber.
type Frame struct {
	Type       FrameType       `json:"type"`
	ServerTSMs int64           `json:"server_time_ms,omitempty"`
	RunID      string          `json:"run_id,omitempty"`
	Snapshot   *model.Snapshot `json:"snapshot,omitempty"`
	Event      *event.Event    `json:"event,omitempty"`
	Message    string          `json:"message,omitempty"`
	Details    map[string]any  `json:"details,omitempty"`
}

// Subscriber is a subscriber's inbound frame queue.
type Subscriber chan Frame

const subscriberQueueSize = 256

// Broadcaster fans frames out to every current subscriber. Grounded on
// the teacher's events.Dispatcher: a bounded per-consumer queue with
// drop-on-full semantics, so one slow reader can never block the
// producer (here, the single runner goroutine) or any other
// subscriber (spec.md §4.3.1 / §5).
type Broadcaster struct {
	mu            sync.RWMutex
	subscribers   map[Subscriber]struct{}
	log           *obslog.Logger
	dropped       int64
	onDrop        func(n int)
	onCountChange func(count int)
}

// NewBroadcaster builds an empty Broadcaster.
func NewBroadcaster(log *obslog.Logger) *Broadcaster {
	return &Broadcaster{subscribers: make(map[Subscriber]struct{}), log: log}
}

// SetHooks installs callbacks fired on subscriber eviction and on any
// change to the live-subscriber count, so internal/obsmetrics can
// track them without the broadcaster importing it directly.
func (b *Broadcaster) SetHooks(onDrop func(n int), onCountChange func(count int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDrop = onDrop
	b.onCountChange = onCountChange
}

// Subscribe registers sub and synchronously delivers the HELLO frame
// followed by the latest snapshot, per spec.md §4.3.
func (b *Broadcaster) Subscribe(runID string, latest model.Snapshot) Subscriber {
	sub := make(Subscriber, subscriberQueueSize)
	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	count := len(b.subscribers)
	onCountChange := b.onCountChange
	b.mu.Unlock()
	if onCountChange != nil {
		onCountChange(count)
	}

	snap := latest
	sub <- Frame{Type: FrameHello, ServerTSMs: time.Now().UnixMilli(), RunID: runID}
	sub <- Frame{Type: FrameSnapshot, Snapshot: &snap}
	return sub
}

// Unsubscribe removes sub and closes its queue.
func (b *Broadcaster) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	var count int
	var onCountChange func(int)
	if _, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		close(sub)
		count = len(b.subscribers)
		onCountChange = b.onCountChange
	}
	b.mu.Unlock()
	if onCountChange != nil {
		onCountChange(count)
	}
}

// Broadcast fans frame out to every current subscriber without
// blocking. A subscriber whose queue is already full is evicted
// rather than allowed to stall delivery to the rest.
func (b *Broadcaster) Broadcast(frame Frame) {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subscribers))
	for s := range b.subscribers {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	var stale []Subscriber
	for _, s := range subs {
		select {
		case s <- frame:
		default:
			stale = append(stale, s)
		}
	}
	if len(stale) == 0 {
		return
	}

	b.mu.Lock()
	b.dropped += int64(len(stale))
	for _, s := range stale {
		if _, ok := b.subscribers[s]; ok {
			delete(b.subscribers, s)
			close(s)
		}
	}
	count := len(b.subscribers)
	onDrop := b.onDrop
	onCountChange := b.onCountChange
	b.mu.Unlock()

	if onDrop != nil {
		onDrop(len(stale))
	}
	if onCountChange != nil {
		onCountChange(count)
	}
	if b.log != nil {
		b.log.WithField("evicted", len(stale)).Warn("evicted slow broadcast subscribers")
	}
}

// BroadcastEvents wraps and broadcasts each event in emission order.
func (b *Broadcaster) BroadcastEvents(events []event.Event) {
	for i := range events {
		ev := events[i]
		b.Broadcast(Frame{Type: FrameEvent, Event: &ev})
	}
}

// Dropped reports the cumulative count of evicted subscriber sends.
func (b *Broadcaster) Dropped() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// SubscriberCount reports the current number of live subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
