// Package event carries gateway notifications from the ingestion goroutine
// to the single consumer loop.
package event

import "sync"

// Type distinguishes event kinds.
type Type int

const (
	// TypeChat is a chat message from a sender.
	TypeChat Type = iota + 1
	// TypeStatus is an informational transport status change.
	TypeStatus
	// TypeError is a transport fault; informational only, never fatal.
	TypeError
)

// Chat is the payload of a TypeChat event.
type Chat struct {
	Sender string
	Text   string
}

// Event is the tagged union enqueued by the gateway and drained by the
// consumer. Chat is set for TypeChat; Message for TypeStatus and TypeError.
type Event struct {
	Type    Type
	Chat    Chat
	Message string
}

// Queue is a thread-safe FIFO between the gateway goroutine and the single
// consumer loop.
//
// The queue is unbounded so a burst of chat lines never blocks the
// transport read loop; the consumer drains it completely on every tick, so
// it stays small in practice. There is no blocking dequeue: the consumer
// polls on its own fixed-period tick.
type Queue struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 64)}
}

// Enqueue appends an event. Safe to call from any goroutine.
// Returns false if the queue has been closed.
func (q *Queue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.events = append(q.events, e)
	return true
}

// Drain removes and returns all currently queued events in FIFO order.
// Returns nil when the queue is empty.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]Event, 0, cap(out))
	return out
}

// Len returns the current queue length.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close rejects further enqueues. Already-queued events remain drainable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
