package dispatchloop

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// mpscInbox is a bounded multi-producer/single-consumer queue guarded by a
// mutex, with a fast atomic "has-data" hint checked outside the lock so
// TryPop can fast-exit on an empty queue without contending. Its blocking
// pop path (PopSpin) busy-reads the hint rather than parking on a condition
// variable, per the core spec's note that the per-receiver inbox MAY keep to
// spin-based pops and restrict condvar use to the loop's own mailbox.
type mpscInbox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []Envelope
	mask    uint64
	head    uint64
	tail    uint64
	hasData atomix.Bool
	stopped atomix.Bool
}

func newMPSCInbox(capacity int) *mpscInbox {
	n := nextPow2(capacity)
	q := &mpscInbox{buf: make([]Envelope, n), mask: uint64(n - 1)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push acquires the mutex, rejects if full, writes the slot, and sets the
// has-data flag with release ordering before releasing the mutex.
func (q *mpscInbox) Push(e Envelope) bool {
	q.mu.Lock()
	if q.tail-q.head > q.mask {
		q.mu.Unlock()
		return false
	}
	q.buf[q.tail&q.mask] = e
	q.tail++
	q.hasData.StoreRelease(true)
	q.mu.Unlock()
	q.cond.Signal()
	return true
}

// TryPop fast-exits with false if has-data is clear; otherwise it locks,
// rechecks, and pops one slot.
func (q *mpscInbox) TryPop() (Envelope, bool) {
	if !q.hasData.LoadAcquire() {
		return Envelope{}, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *mpscInbox) popLocked() (Envelope, bool) {
	if q.head == q.tail {
		return Envelope{}, false
	}
	slot := &q.buf[q.head&q.mask]
	e := *slot
	slot.Reset()
	q.head++
	if q.head == q.tail {
		q.hasData.StoreRelease(false)
	}
	return e, true
}

// PopSpin waits without the mutex by busy-reading the has-data hint, with a
// pause hint on each empty iteration, then locks to pop.
func (q *mpscInbox) PopSpin() (Envelope, bool) {
	var sw spin.Wait
	for {
		if e, ok := q.TryPop(); ok {
			return e, true
		}
		if q.stopped.LoadAcquire() {
			return q.TryPop()
		}
		sw.Once()
	}
}

// Stop is idempotent and wakes any blocked waiter.
func (q *mpscInbox) Stop() {
	q.stopped.StoreRelease(true)
	q.cond.Broadcast()
}
