package dispatchloop

import "reflect"

// ThreadMode selects whether a receiver is dispatched on the loop goroutine
// or on a private goroutine it owns.
type ThreadMode int

const (
	// LoopHostedMode dispatches a receiver on the loop goroutine via the
	// dual mailbox.
	LoopHostedMode ThreadMode = iota
	// ThreadHostedMode dispatches a receiver on its own dedicated
	// goroutine via a private inbox.
	ThreadHostedMode
)

// Receiver is implemented by user components dispatched by a Loop. OnEvent
// is invoked once per matching event, on the receiver's host (the loop
// goroutine for loop-hosted receivers, the receiver's own goroutine for
// thread-hosted ones), with a Handle scoped to that receiver's declared
// emits set.
type Receiver interface {
	OnEvent(env Envelope, h *Handle)
}

// declaration describes one receiver's wiring.
type declaration struct {
	displayName   string
	receiver      Receiver
	receiverType  reflect.Type
	receives      []reflect.Type
	emits         []reflect.Type
	threadMode    ThreadMode
	inboxCapacity int
}

func (d *declaration) name() string {
	if d.displayName != "" {
		return d.displayName
	}
	return d.receiverType.String()
}

func (d *declaration) apply(b *builderState) error {
	b.receivers = append(b.receivers, d)
	return nil
}

// externalDecl describes an external producer: emits only, no receiver, no
// thread mode.
type externalDecl struct {
	name  string
	emits []reflect.Type
}

func (e *externalDecl) apply(b *builderState) error {
	b.externals = append(b.externals, e)
	return nil
}

// Declaration is one entry passed to New or a Builder: either a receiver
// (loop-hosted or thread-hosted) or an external-producer registration.
type Declaration interface {
	apply(*builderState) error
}

// DeclOption configures a single Declaration.
type DeclOption func(*declaration)

// On declares that the receiver consumes events of type T.
func On[T any]() DeclOption {
	t := reflect.TypeFor[T]()
	return func(d *declaration) { d.receives = append(d.receives, t) }
}

// CanEmit declares that the receiver (or external producer) may emit events
// of type T. A Handle rejects any Emit call for a type not declared here.
func CanEmit[T any]() DeclOption {
	t := reflect.TypeFor[T]()
	return func(d *declaration) { d.emits = append(d.emits, t) }
}

// Named overrides the receiver's default display name (its Go type name),
// used in logs and error messages.
func Named(name string) DeclOption {
	return func(d *declaration) { d.displayName = name }
}

// InboxCapacity sets a thread-hosted receiver's inbox capacity (rounded up
// to a power of two), overriding WithDefaultInboxCapacity for this receiver
// only. No-op on a loop-hosted receiver.
func InboxCapacity(n int) DeclOption {
	return func(d *declaration) { d.inboxCapacity = n }
}

// LoopHosted declares a receiver dispatched on the loop goroutine via the
// dual mailbox.
func LoopHosted(receiver Receiver, opts ...DeclOption) Declaration {
	d := &declaration{receiver: receiver, receiverType: reflect.TypeOf(receiver), threadMode: LoopHostedMode}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ThreadHosted declares a receiver dispatched on its own dedicated
// goroutine via a private inbox.
func ThreadHosted(receiver Receiver, opts ...DeclOption) Declaration {
	d := &declaration{receiver: receiver, receiverType: reflect.TypeOf(receiver), threadMode: ThreadHostedMode}
	for _, o := range opts {
		o(d)
	}
	return d
}

// External declares an external producer: a named emitter with no receives
// set and no thread mode, used by code outside the loop via
// SharedLoop.NewEmitter.
func External(name string, opts ...DeclOption) Declaration {
	d := &declaration{displayName: name}
	for _, o := range opts {
		o(d)
	}
	return &externalDecl{name: name, emits: d.emits}
}

// builderState accumulates Declarations before topology analysis.
type builderState struct {
	receivers []*declaration
	externals []*externalDecl
}

// Builder assembles a Loop's receiver set incrementally, mirroring the
// original design's compile-time builder pattern; New(decls...) remains
// available for callers who prefer to assemble the slice themselves.
type Builder struct {
	state builderState
	err   error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// LoopHosted registers a loop-hosted receiver.
func (b *Builder) LoopHosted(receiver Receiver, opts ...DeclOption) *Builder {
	return b.add(LoopHosted(receiver, opts...))
}

// ThreadHosted registers a thread-hosted receiver.
func (b *Builder) ThreadHosted(receiver Receiver, opts ...DeclOption) *Builder {
	return b.add(ThreadHosted(receiver, opts...))
}

// External registers an external producer.
func (b *Builder) External(name string, opts ...DeclOption) *Builder {
	return b.add(External(name, opts...))
}

func (b *Builder) add(d Declaration) *Builder {
	if b.err != nil {
		return b
	}
	b.err = d.apply(&b.state)
	return b
}

// Build resolves the accumulated declarations into a running-ready Loop.
func (b *Builder) Build(opts ...LoopOption) (*Loop, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newLoop(b.state, opts)
}

// New builds a Loop directly from a flat declaration list.
func New(decls []Declaration, opts ...LoopOption) (*Loop, error) {
	var state builderState
	for _, d := range decls {
		if err := d.apply(&state); err != nil {
			return nil, err
		}
	}
	return newLoop(state, opts)
}
