// Package input carries window events to the renderer through a bounded
// queue. Producers never block: when the queue is full pointer events are
// dropped while resize, close and shader change events are always kept.
package input

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// EventKind identifies the payload of an Event.
type EventKind int

const (
	EventResize EventKind = iota
	EventMouseButton
	EventCursorMove
	EventScroll
	EventClose
	EventShaderChanged
)

var kindNames = [...]string{"resize", "mouse-button", "cursor-move", "scroll", "close", "shader-changed"}

func (k EventKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is a single window notification. Resize uses Width/Height, cursor
// and scroll use X/Y, buttons use Button/Pressed, shader changes use Path.
type Event struct {
	Kind    EventKind
	Width   int
	Height  int
	X, Y    float64
	Button  Button
	Pressed bool
	Path    string
}

// DefaultQueueSize is large enough for a burst of cursor motion between frames.
const DefaultQueueSize = 256

// Queue is a bounded, non-blocking event queue. Push is safe to call
// from any goroutine.
type Queue struct {
	mu      sync.Mutex
	events  []Event
	size    int
	dropped atomic.Int64
}

// NewQueue creates a queue holding at most size ordinary events.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &Queue{events: make([]Event, 0, size), size: size}
}

// sticky events change renderer state and must reach the loop.
func sticky(k EventKind) bool {
	return k == EventResize || k == EventClose || k == EventShaderChanged
}

// Push enqueues ev without blocking. When the queue is full an ordinary
// event is dropped. A resize, close or shader change instead evicts the
// oldest ordinary event, and is appended past the bound when every pending
// event is itself sticky.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) < q.size {
		q.events = append(q.events, ev)
		return
	}
	if !sticky(ev.Kind) {
		q.dropped.Add(1)
		return
	}
	for i, pending := range q.events {
		if !sticky(pending.Kind) {
			q.events = append(q.events[:i], q.events[i+1:]...)
			q.dropped.Add(1)
			break
		}
	}
	q.events = append(q.events, ev)
}

// Drain calls fn for every pending event, in order, without blocking.
// Events pushed from fn are left for the next Drain.
func (q *Queue) Drain(fn func(Event)) int {
	q.mu.Lock()
	pending := q.events
	q.events = make([]Event, 0, q.size)
	q.mu.Unlock()

	for _, ev := range pending {
		fn(ev)
	}
	return len(pending)
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Dropped returns the number of events discarded because the queue was full.
func (q *Queue) Dropped() int {
	return int(q.dropped.Load())
}
