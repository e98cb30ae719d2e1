package dispatchloop

import (
	"reflect"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Loop is the dispatcher kernel: a fixed topology of loop-hosted and
// thread-hosted receivers, wired at construction time and never
// reshaped afterward. A Loop is created via [New] or [NewBuilder], started
// with Start, driven by a [Strategy] (or by hand via TryGetEvent/
// DispatchEvent), and shut down with Stop.
type Loop struct {
	topology *topology
	mailbox  *dualMailbox
	state    *fastState
	logger   *logiface.Logger[*stumpy.Event]

	loopHostsByDecl   map[*declaration]*loopHost
	threadHostsByDecl map[*declaration]*threadHost
	receiverByType    map[reflect.Type]Receiver

	externalEmits map[string][]reflect.Type

	hybridSpinCount int
	loopGoroutineID int64
}

func newLoop(state builderState, opts []LoopOption) (*Loop, error) {
	cfg, err := resolveLoopOptions(opts)
	if err != nil {
		return nil, err
	}

	topo, err := analyzeTopology(&state)
	if err != nil {
		return nil, err
	}

	l := &Loop{
		topology:          topo,
		mailbox:           newDualMailbox(cfg.mailboxLocalCap, cfg.mailboxSharedInit),
		state:             newFastState(),
		logger:            cfg.logger,
		loopHostsByDecl:   make(map[*declaration]*loopHost),
		threadHostsByDecl: make(map[*declaration]*threadHost),
		receiverByType:    make(map[reflect.Type]Receiver),
		externalEmits:     make(map[string][]reflect.Type),
		hybridSpinCount:   cfg.hybridSpinCount,
	}

	for _, d := range state.receivers {
		l.receiverByType[d.receiverType] = d.receiver
		switch d.threadMode {
		case LoopHostedMode:
			l.loopHostsByDecl[d] = newLoopHost(l, d)
			logReceiverStart(l.logger, d.name(), false)
		case ThreadHostedMode:
			boxCap := cfg.defaultInboxCap
			if d.inboxCapacity > 0 {
				boxCap = d.inboxCapacity
			}
			kind := topo.inboxKind[d]
			var box inbox
			if kind == "spsc" {
				box = newSPSCInbox(boxCap)
			} else {
				box = newMPSCInbox(boxCap)
			}
			l.threadHostsByDecl[d] = newThreadHost(l, d, box)
			logReceiverStart(l.logger, d.name(), true)
			logInboxKind(l.logger, d.name(), kind, topo.producerCount[d])
		}
	}

	for _, e := range state.externals {
		l.externalEmits[e.name] = e.emits
	}

	return l, nil
}

// Start transitions the loop from Idle to Running and launches every
// thread-hosted receiver's dedicated goroutine. Calling Start when the loop
// is not Idle (a second time, or after Stop) has no effect.
func (l *Loop) Start() {
	if !l.state.TryTransition(StateIdle, StateRunning) {
		return
	}
	l.loopGoroutineID = currentGoroutineID()
	for _, th := range l.threadHostsByDecl {
		th.start()
	}
}

// Stop transitions the loop to Stopping, signals the mailbox and every
// thread-hosted inbox to stop, waits for all thread-hosted goroutines to
// drain, then transitions to Stopped. Stop is idempotent.
func (l *Loop) Stop() {
	if !l.state.TryTransition(StateRunning, StateStopping) {
		return
	}
	l.mailbox.Stop()
	for _, th := range l.threadHostsByDecl {
		th.stop()
		logReceiverStop(l.logger, th.decl.name())
	}
	l.state.Store(StateStopped)
}

// IsRunning reports whether the loop is currently accepting and dispatching
// events.
func (l *Loop) IsRunning() bool { return l.state.IsRunning() }

// NeedsSharedSide reports whether this loop's topology requires the dual
// mailbox's shared (cross-goroutine) side at all: true if any thread-hosted
// receiver or external producer can emit an event with a loop-hosted
// consumer.
func (l *Loop) NeedsSharedSide() bool { return l.topology.needsSharedSide }

// DefaultHybrid returns a new [Hybrid] strategy using this loop's
// WithHybridSpinCount setting (or its default of 1000), so callers don't
// have to thread that configuration through by hand to get a Hybrid that
// matches the rest of the loop's tuning.
func (l *Loop) DefaultHybrid() *Hybrid {
	return NewHybrid(l.hybridSpinCount)
}

// Get returns the receiver of type R registered on loop, if any.
func Get[R Receiver](l *Loop) (R, bool) {
	var zero R
	t := reflect.TypeFor[R]()
	r, ok := l.receiverByType[t]
	if !ok {
		return zero, false
	}
	rr, ok := r.(R)
	return rr, ok
}

// route implements the two independent fan-outs performed at emit time: a
// single collective push onto the mailbox representing every loop-hosted
// receiver of this event type (its own internal fan-out happens later, at
// DispatchEvent time), and an immediate copy/move fan-out directly into
// every matching thread-hosted receiver's inbox. fromLoop selects whether
// the mailbox push goes local (loop goroutine) or remote (any other
// goroutine).
func (l *Loop) route(env Envelope, fromLoop bool) error {
	t := env.Type()
	loopTargets := l.topology.loopReceiversFor[t]
	threadTargets := l.topology.threadReceiversFor[t]

	total := len(threadTargets)
	hasLoopGroup := len(loopTargets) > 0
	if hasLoopGroup {
		total++
	}
	if total == 0 {
		return nil
	}

	var errs []error
	n := 0

	for _, d := range threadTargets {
		n++
		isLast := n == total
		th := l.threadHostsByDecl[d]
		e := Envelope{typ: t, payload: clonePayload(env.payload, isLast)}
		if !th.inbox.Push(e) {
			logCapacityDrop(l.logger, "inbox:"+d.name(), t)
			errs = append(errs, &CapacityError{Event: t, Queue: "inbox:" + d.name()})
		}
	}

	if hasLoopGroup {
		n++
		isLast := n == total
		e := Envelope{typ: t, payload: clonePayload(env.payload, isLast)}
		var ok bool
		if fromLoop {
			ok = l.mailbox.PushLocal(e)
		} else {
			ok = l.mailbox.PushRemote(e)
		}
		if !ok {
			logCapacityDrop(l.logger, "mailbox", t)
			errs = append(errs, &CapacityError{Event: t, Queue: "mailbox"})
		}
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &AggregateError{Errors: errs}
	}
}

// Emit routes event without going through a Handle, deciding push-local
// versus push-remote by comparing the calling goroutine to the loop's own
// goroutine (captured at Start). Receivers should prefer their Handle,
// which makes this decision statically instead of per-call; Emit exists for
// code that predates or bypasses the topology (tests, ad hoc producers).
func (l *Loop) Emit(event any) error {
	fromLoop := currentGoroutineID() == l.loopGoroutineID
	return l.route(NewEnvelope(event), fromLoop)
}

// TryGetEvent pops one envelope from the mailbox without dispatching it.
// Valid only from the loop goroutine.
func (l *Loop) TryGetEvent() (Envelope, bool) {
	return l.mailbox.TryPop()
}

// waitGetEvent blocks until an envelope is available or the loop is
// stopped. Valid only from the loop goroutine.
func (l *Loop) waitGetEvent() (Envelope, bool) {
	return l.mailbox.WaitPop()
}

// DispatchEvent performs the loop-hosted fan-out for an envelope already
// popped from the mailbox: a copy/move fan-out across every loop-hosted
// receiver declared for env's type, invoked synchronously on the calling
// (loop) goroutine.
func (l *Loop) DispatchEvent(env Envelope) {
	targets := l.topology.loopReceiversFor[env.Type()]
	n := len(targets)
	if n == 0 {
		return
	}
	for i, d := range targets {
		isLast := i == n-1
		e := Envelope{typ: env.typ, payload: clonePayload(env.payload, isLast)}
		l.loopHostsByDecl[d].dispatch(e)
	}
}

// declOf returns the declaration a receiver was registered under, if any.
// Used by tests to inspect topology decisions keyed by *declaration.
func (l *Loop) declOf(receiver Receiver) *declaration {
	for d := range l.loopHostsByDecl {
		if d.receiver == receiver {
			return d
		}
	}
	for d := range l.threadHostsByDecl {
		if d.receiver == receiver {
			return d
		}
	}
	return nil
}

// externalEmitTypes returns the declared emits set for a registered
// external producer name, and whether that name was ever declared.
func (l *Loop) externalEmitTypes(name string) ([]reflect.Type, bool) {
	t, ok := l.externalEmits[name]
	return t, ok
}
