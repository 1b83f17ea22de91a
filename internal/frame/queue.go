// Package frame defers work to the next display frame.
//
// A Queue holds at most one pending job. Scheduling again before the frame
// boundary replaces the pending job, so a burst of camera events produces
// one push per frame.
package frame

import "sync"

type Queue struct {
	mu      sync.Mutex
	pending func()
	gen     uint64
	flushed uint64
}

func NewQueue() *Queue {
	return &Queue{}
}

// Schedule makes fn the job for the next Flush.
func (q *Queue) Schedule(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = fn
	q.gen++
}

// Flush runs the pending job, if any, outside the lock.
func (q *Queue) Flush() bool {
	q.mu.Lock()
	fn := q.pending
	q.pending = nil
	if fn != nil {
		q.flushed++
	}
	q.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (q *Queue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending != nil
}

// Superseded is the number of scheduled jobs replaced before they ran.
func (q *Queue) Superseded() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.gen - q.flushed
	if q.pending != nil {
		n--
	}
	return n
}

// Immediate runs jobs as soon as they are scheduled. It is used where no
// frame loop exists, e.g. one-shot HTTP requests.
type Immediate struct{}

func (Immediate) Schedule(fn func()) { fn() }
