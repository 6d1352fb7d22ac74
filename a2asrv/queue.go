package a2asrv

import (
	"context"
	"errors"
	"sync"

	"github.com/davidvonthenen/a2a-simple/a2a"
)

// DefaultQueueSize is the event buffer used when no size is configured.
const DefaultQueueSize = 100

// ErrQueueClosed is returned by Read once the queue is closed and drained,
// and by Write after Close.
var ErrQueueClosed = errors.New("event queue closed")

// EventQueue is the channel an executor emits protocol events through while
// working on a request. The request handler reads from the queue and closes
// it once the executor returns; executors must not call Write afterwards.
type EventQueue struct {
	events    chan a2a.Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventQueue constructs a queue with the given buffer size.
func NewEventQueue(size int) *EventQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}

	return &EventQueue{
		events: make(chan a2a.Event, size),
		done:   make(chan struct{}),
	}
}

// Write enqueues an event, blocking while the buffer is full until the
// consumer catches up or ctx is done.
func (q *EventQueue) Write(ctx context.Context, ev a2a.Event) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.events <- ev:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read dequeues the next event. Buffered events are drained even after Close;
// once the queue is closed and empty Read returns ErrQueueClosed.
func (q *EventQueue) Read(ctx context.Context) (a2a.Event, error) {
	select {
	case ev := <-q.events:
		return ev, nil
	default:
	}

	select {
	case ev := <-q.events:
		return ev, nil
	case <-q.done:
		select {
		case ev := <-q.events:
			return ev, nil
		default:
			return nil, ErrQueueClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close marks the queue as finished. Safe to call multiple times.
func (q *EventQueue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}
