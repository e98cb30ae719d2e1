package dispatchloop

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// spscInbox is a lock-free bounded single-producer/single-consumer queue.
// Head is mutated only by the consumer, tail only by the producer; the
// cache-line padding around them (and the independent stop flag) follows
// the isolation the core spec requires to avoid false sharing between the
// producer and consumer goroutines.
type spscInbox struct {
	_       [64]byte
	head    atomix.Uint64
	_       [56]byte
	tail    atomix.Uint64
	_       [56]byte
	stopped atomix.Bool
	_       [63]byte

	buf  []Envelope
	mask uint64
}

func newSPSCInbox(capacity int) *spscInbox {
	n := nextPow2(capacity)
	return &spscInbox{buf: make([]Envelope, n), mask: uint64(n - 1)}
}

// Push publishes the slot with a release store to tail after the write;
// callable from the single producer goroutine only.
func (q *spscInbox) Push(e Envelope) bool {
	tail := q.tail.LoadRelaxed()
	head := q.head.LoadAcquire()
	if tail-head > q.mask {
		return false
	}
	q.buf[tail&q.mask] = e
	q.tail.StoreRelease(tail + 1)
	return true
}

// TryPop observes tail with an acquire load before reading the slot;
// callable from the single consumer goroutine only.
func (q *spscInbox) TryPop() (Envelope, bool) {
	head := q.head.LoadRelaxed()
	tail := q.tail.LoadAcquire()
	if head == tail {
		return Envelope{}, false
	}
	slot := &q.buf[head&q.mask]
	e := *slot
	slot.Reset()
	q.head.StoreRelease(head + 1)
	return e, true
}

// PopSpin busy-waits for an item or a Stop, issuing an architectural pause
// hint on each empty iteration, and returns false if stopped first.
func (q *spscInbox) PopSpin() (Envelope, bool) {
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

// Stop is idempotent. It does not block Push; the consumer is responsible
// for draining on stop if it wants to observe already-enqueued events.
func (q *spscInbox) Stop() {
	q.stopped.StoreRelease(true)
}
