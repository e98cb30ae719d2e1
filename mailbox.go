package dispatchloop

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// dualMailbox is the loop's own mailbox: a local ring buffer touched only by
// the loop goroutine, plus a shared mutex-protected FIFO for cross-thread
// producers. It gives loop-hosted receivers a synchronization-free hot path
// while still admitting external producers and thread-hosted receivers.
type dualMailbox struct {
	local *ringBuffer

	mu             sync.Mutex
	cond           *sync.Cond
	shared         []Envelope
	hasRemote      atomix.Bool
	consumerParked atomix.Bool
	stopped        atomix.Bool
}

func newDualMailbox(localCap, sharedInit int) *dualMailbox {
	m := &dualMailbox{
		local:  newRingBuffer(localCap),
		shared: make([]Envelope, 0, sharedInit),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// PushLocal is valid only when called from the loop goroutine: it goes to
// the local ring with no synchronization.
func (m *dualMailbox) PushLocal(e Envelope) bool {
	return m.local.Push(e)
}

// PushRemote is valid from any goroutine other than the loop goroutine. It
// locks the shared FIFO, enqueues, and signals the condition variable only
// if the consumer is currently parked; otherwise the consumer is assumed to
// be spinning and will observe hasRemote on its own.
func (m *dualMailbox) PushRemote(e Envelope) bool {
	m.mu.Lock()
	m.shared = append(m.shared, e)
	m.hasRemote.StoreRelease(true)
	parked := m.consumerParked.LoadAcquire()
	m.mu.Unlock()
	if parked {
		m.cond.Signal()
	}
	return true
}

// drainSharedLocked moves as many shared events as fit into the local ring.
// If the local ring fills mid-drain, the remainder stays in the shared FIFO
// and hasRemote is cleared only once the shared FIFO is fully drained.
// Caller must hold m.mu.
func (m *dualMailbox) drainSharedLocked() {
	n := 0
	for n < len(m.shared) && m.local.Push(m.shared[n]) {
		n++
	}
	if n > 0 {
		copy(m.shared, m.shared[n:])
		clear(m.shared[len(m.shared)-n:])
		m.shared = m.shared[:len(m.shared)-n]
	}
	if len(m.shared) == 0 {
		m.hasRemote.StoreRelease(false)
	}
}

// TryPop is valid only from the loop goroutine: it pops from the local ring
// first, and if empty, drains the shared FIFO under one lock before trying
// again.
func (m *dualMailbox) TryPop() (Envelope, bool) {
	if e, ok := m.local.TryPop(); ok {
		return e, true
	}
	if m.hasRemote.LoadAcquire() {
		m.mu.Lock()
		m.drainSharedLocked()
		m.mu.Unlock()
	}
	return m.local.TryPop()
}

// WaitPop is valid only from the loop goroutine. If the mailbox is idle
// after a drain attempt, it marks the consumer parked and waits on the
// condition variable until hasRemote or stop.
func (m *dualMailbox) WaitPop() (Envelope, bool) {
	if e, ok := m.TryPop(); ok {
		return e, true
	}
	m.mu.Lock()
	for {
		m.drainSharedLocked()
		if e, ok := m.local.TryPop(); ok {
			m.mu.Unlock()
			return e, true
		}
		if m.stopped.LoadAcquire() {
			m.mu.Unlock()
			return Envelope{}, false
		}
		m.consumerParked.StoreRelease(true)
		m.cond.Wait()
		m.consumerParked.StoreRelease(false)
	}
}

// Stop is idempotent and wakes any parked consumer.
func (m *dualMailbox) Stop() {
	m.stopped.StoreRelease(true)
	m.mu.Lock()
	m.cond.Broadcast()
	m.mu.Unlock()
}
