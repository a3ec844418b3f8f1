package event

import "sync/atomic"

const (
	// QueueSize is the ring capacity. Must be a power of two.
	QueueSize = 1024
	queueMask = QueueSize - 1
)

// Queue is a lock-free MPSC ring buffer of events.
//
//   - Push: lock-free CAS, any number of producers
//   - Consume: single consumer (the compositor loop)
//
// When full, the oldest events are overwritten and the next Consume reports
// the overflow so the consumer can resynchronise.
type Queue struct {
	events    [QueueSize]Event
	published [QueueSize]atomic.Bool // slot fully written
	head      atomic.Uint64          // read index
	tail      atomic.Uint64          // write index
	overflow  atomic.Bool
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends e. Safe for concurrent producers.
func (q *Queue) Push(e Event) {
	for {
		tail := q.tail.Load()
		next := tail + 1
		if !q.tail.CompareAndSwap(tail, next) {
			continue
		}
		idx := tail & queueMask
		q.events[idx] = e
		q.published[idx].Store(true) // after the write

		head := q.head.Load()
		if next-head > QueueSize {
			q.overflow.Store(true)
			q.head.CompareAndSwap(head, next-QueueSize)
		}
		return
	}
}

// Consume returns the pending events in FIFO order. overflow is true when
// events were dropped since the previous call.
func (q *Queue) Consume() (events []Event, overflow bool) {
	overflow = q.overflow.Swap(false)
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if tail == head {
			return nil, overflow
		}

		// A lagging head means producers overwrote the oldest slots.
		start, n := head, tail-head
		if n > QueueSize {
			n = QueueSize
			start = tail - QueueSize
			overflow = true
		}

		out := make([]Event, 0, n)
		for i := range n {
			idx := (start + i) & queueMask
			if !q.published[idx].Load() {
				break // writer still filling the slot
			}
			out = append(out, q.events[idx])
			q.published[idx].Store(false)
		}

		if q.head.CompareAndSwap(head, start+uint64(len(out))) {
			if len(out) == 0 {
				return nil, overflow
			}
			return out, overflow
		}
	}
}

// Len returns the approximate number of pending events.
func (q *Queue) Len() int {
	head, tail := q.head.Load(), q.tail.Load()
	if tail <= head {
		return 0
	}
	return int(min(tail-head, QueueSize))
}
