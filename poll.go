package dispatchloop

// Strategy drives a Loop's own goroutine: repeatedly popping one envelope
// from the mailbox and dispatching it to loop-hosted receivers, choosing
// how to wait when the mailbox is empty. The four strategies trade latency
// for CPU usage differently; all satisfy the same interface so a Loop can
// be driven interchangeably by any of them.
type Strategy interface {
	// Poll drains and dispatches at most one envelope, reporting whether it
	// found one.
	Poll(l *Loop) bool
	// Run drives l until it is no longer running.
	Run(l *Loop)
	// RunWhile drives l until it is no longer running or cond returns false.
	RunWhile(l *Loop, cond func() bool)
}

func runLoop(l *Loop, poll func() bool) {
	for l.IsRunning() {
		poll()
	}
}

func runLoopWhile(l *Loop, cond func() bool, poll func() bool) {
	for l.IsRunning() && cond() {
		poll()
	}
}

// pollOnce is the shared non-blocking poll body used by Spin, Yield, and
// Hybrid: try the mailbox, dispatch on hit.
func pollOnce(l *Loop) bool {
	env, ok := l.TryGetEvent()
	if !ok {
		return false
	}
	l.DispatchEvent(env)
	return true
}

// Spin busy-polls the mailbox with no backoff at all: lowest latency,
// highest CPU usage. Suited to a dedicated core with no other work to
// schedule.
type Spin struct{}

func (Spin) Poll(l *Loop) bool { return pollOnce(l) }

func (s Spin) Run(l *Loop) { runLoop(l, func() bool { return s.Poll(l) }) }

func (s Spin) RunWhile(l *Loop, cond func() bool) {
	runLoopWhile(l, cond, func() bool { return s.Poll(l) })
}

// Yield polls the mailbox and calls the OS scheduler yield primitive on
// every empty poll, trading a little latency for much lower CPU usage than
// Spin under light load.
type Yield struct{}

func (Yield) Poll(l *Loop) bool {
	if pollOnce(l) {
		return true
	}
	yieldOS()
	return false
}

func (y Yield) Run(l *Loop) { runLoop(l, func() bool { return y.Poll(l) }) }

func (y Yield) RunWhile(l *Loop, cond func() bool) {
	runLoopWhile(l, cond, func() bool { return y.Poll(l) })
}

// Wait blocks on the mailbox's condition variable when empty: lowest CPU
// usage, highest wake latency. Suited to a loop that mostly idles.
type Wait struct{}

func (Wait) Poll(l *Loop) bool {
	env, ok := l.waitGetEvent()
	if !ok {
		return false
	}
	l.DispatchEvent(env)
	return true
}

func (w Wait) Run(l *Loop) { runLoop(l, func() bool { return w.Poll(l) }) }

func (w Wait) RunWhile(l *Loop, cond func() bool) {
	runLoopWhile(l, cond, func() bool { return w.Poll(l) })
}

// Hybrid spins for a configurable number of consecutive empty polls before
// falling back to a blocking wait, approximating Spin's latency under load
// and Wait's CPU usage when idle. Hybrid carries mutable state (the empty
// poll counter) across calls, so it must be used by pointer.
type Hybrid struct {
	spinLimit int
	empty     int
}

// NewHybrid returns a Hybrid that spins for spinLimit consecutive empty
// polls before blocking. Callers who want a loop's own WithHybridSpinCount
// setting instead of an explicit limit should use [Loop.DefaultHybrid].
func NewHybrid(spinLimit int) *Hybrid {
	if spinLimit <= 0 {
		spinLimit = 1000
	}
	return &Hybrid{spinLimit: spinLimit}
}

func (h *Hybrid) Poll(l *Loop) bool {
	if h.empty < h.spinLimit {
		if pollOnce(l) {
			h.empty = 0
			return true
		}
		h.empty++
		return false
	}
	env, ok := l.waitGetEvent()
	if !ok {
		return false
	}
	h.empty = 0
	l.DispatchEvent(env)
	return true
}

func (h *Hybrid) Run(l *Loop) { runLoop(l, func() bool { return h.Poll(l) }) }

func (h *Hybrid) RunWhile(l *Loop, cond func() bool) {
	runLoopWhile(l, cond, func() bool { return h.Poll(l) })
}
