package dispatchloop

import (
	"fmt"
	"reflect"
)

// Handle is the only way a Receiver may emit events. Each Handle is scoped
// to the emits set declared for the receiver it was constructed for: an
// Emit call for any other type fails immediately with a WiringError, without
// ever reaching a queue.
//
// Which routing path a Handle takes (push-local versus push-remote) is
// statically fixed by whether it belongs to a loop-hosted or a
// thread-hosted receiver; no goroutine-identity check occurs on the emit
// path.
type Handle struct {
	loop     *Loop
	owner    string
	fromLoop bool
	allowed  map[reflect.Type]bool
}

func newHandle(loop *Loop, owner string, fromLoop bool, emits []reflect.Type) *Handle {
	allowed := make(map[reflect.Type]bool, len(emits))
	for _, t := range emits {
		allowed[t] = true
	}
	return &Handle{loop: loop, owner: owner, fromLoop: fromLoop, allowed: allowed}
}

// Emit routes event through the loop's topology. It fails with a
// WiringError if the caller's declaration never listed this type via
// CanEmit, without ever reaching a queue.
func (h *Handle) Emit(event any) error {
	t := reflect.TypeOf(event)
	if !h.allowed[t] {
		return wireErr(nil, t, fmt.Sprintf("%s: emit of undeclared type", h.owner))
	}
	return h.loop.route(NewEnvelope(event), h.fromLoop)
}
