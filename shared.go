package dispatchloop

import (
	"reflect"
	"weak"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// SharedLoop wraps a *Loop for handing out to external producers: code
// running outside the topology (not declared as a receiver) that still
// needs to emit events into it. It holds a strong reference; copying a
// SharedLoop copies the wrapper, not the Loop, mirroring the original's
// shared-ownership handle.
type SharedLoop struct {
	loop *Loop
	weak weak.Pointer[Loop]
}

// NewSharedLoop wraps loop for distribution to external emitters.
func NewSharedLoop(loop *Loop) SharedLoop {
	return SharedLoop{loop: loop, weak: weak.Make(loop)}
}

// Loop returns the wrapped Loop directly. Safe as long as the SharedLoop
// (or another strong reference to the same Loop) is reachable.
func (s SharedLoop) Loop() *Loop { return s.loop }

// NewEmitter returns an ExternalEmitter for the named external producer.
// The name must have been declared via [External] when the loop was built;
// otherwise NewEmitter fails with a WiringError.
func (s SharedLoop) NewEmitter(name string) (*ExternalEmitter, error) {
	emits, ok := s.loop.externalEmitTypes(name)
	if !ok {
		return nil, wireErr(nil, nil, "unregistered external producer: "+name)
	}
	return &ExternalEmitter{name: name, weak: s.weak, emits: emits, logger: s.loop.logger}, nil
}

// ExternalEmitter is a handle for code outside the loop's topology to emit
// events into it. Unlike a Handle, it holds only a weak reference to the
// Loop: once the loop's last strong reference is gone and it is collected,
// Emit returns a LivenessError instead of dereferencing a dead loop. This is
// the core spec's "safety by construction" answer to the external-emitter
// liveness question, without requiring every producer to track loop
// lifetime by hand.
type ExternalEmitter struct {
	name   string
	weak   weak.Pointer[Loop]
	emits  []reflect.Type
	logger *logiface.Logger[*stumpy.Event]
}

// IsValid reports whether the owning Loop is still alive.
func (e *ExternalEmitter) IsValid() bool {
	return e.weak.Value() != nil
}

// Emit routes event through the owning loop's topology (a remote push onto
// the mailbox for loop-hosted consumers, a direct push onto each consuming
// thread-hosted receiver's inbox), or returns a LivenessError if the loop has already been destroyed, or a
// WiringError if event's type was never declared via CanEmit on the
// External registration.
func (e *ExternalEmitter) Emit(event any) error {
	loop := e.weak.Value()
	if loop == nil {
		logExternalEmitRejected(e.logger, e.name)
		return &LivenessError{Producer: e.name}
	}
	t := reflect.TypeOf(event)
	allowed := false
	for _, a := range e.emits {
		if a == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return wireErr(nil, t, e.name+": emit of undeclared type")
	}
	return loop.route(NewEnvelope(event), false)
}
