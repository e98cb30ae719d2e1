// Package dispatchloop implements a statically-wired, type-directed
// in-process event dispatcher.
//
// A fixed set of receiver components is declared once, at construction
// time, via [New] or [NewBuilder]. Each receiver declares the event types it
// consumes ("receives"), the event types it may produce ("emits"), and
// whether it runs on the dispatcher's own loop goroutine (loop-hosted) or on
// a private goroutine it owns (thread-hosted). [Loop] then routes every
// emitted event to exactly the receivers that declared interest.
//
// # Architecture
//
// The dispatcher kernel is built from ten small, independently testable
// pieces: the tagged [Envelope], the unsynchronized local [ringBuffer], the
// lock-free [spscInbox], the mutex-guarded [mpscInbox], the loop's
// [dualMailbox] (local ring plus shared mutex-protected queue), the
// construction-time [topology] analyzer, the two receiver host shapes
// (loop-hosted and thread-hosted), per-receiver [Handle] values, the [Loop]
// itself, and the four [Strategy] implementations that drive it.
//
// # Thread Safety
//
// Exactly one goroutine drives the loop by calling a [Strategy]'s Poll/Run
// methods. Each thread-hosted receiver gets exactly one dedicated goroutine,
// spawned by [Loop.Start] and joined by [Loop.Stop]. Any other goroutine may
// hold a [Handle] (via a receiver's OnEvent call) or an external-producer
// handle obtained from [SharedLoop.NewEmitter] and call Emit concurrently.
//
// # Execution Model
//
// Emit resolves, at the call site, to an enqueue onto the loop mailbox
// (local side if the caller is the loop goroutine, shared side otherwise)
// and/or a direct push onto each consuming thread-hosted receiver's inbox.
// Events emitted from inside a receiver's OnEvent always re-enter a queue;
// the dispatcher never calls OnEvent synchronously from within another
// OnEvent, which bounds stack depth regardless of event chain length.
//
// # Usage
//
//	loop, err := dispatchloop.New([]dispatchloop.Declaration{
//	    dispatchloop.LoopHosted(pingReceiver, dispatchloop.On[Pong](), dispatchloop.CanEmit[Ping]()),
//	    dispatchloop.LoopHosted(pongReceiver, dispatchloop.On[Ping](), dispatchloop.CanEmit[Pong]()),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	loop.Start()
//	loop.Emit(Ping{Value: 0})
//	dispatchloop.Spin{}.RunWhile(loop, func() bool { return pingReceiver.Count() < 6 })
//
// # Error Types
//
// The package provides a small taxonomy of error types:
//   - [WiringError]: a topology violation, returned from New/Build, from an
//     Emit of an undeclared type, or from [SharedLoop.NewEmitter] for an
//     unregistered producer name.
//   - [AggregateError]: several errors from one call (all wiring errors of
//     a New/Build call, or all capacity errors of one emit).
//   - [CapacityError]: a run-time push rejected because a queue was full.
//   - [LivenessError]: an external-emitter Emit call after the Loop died,
//     wrapping [ErrLoopDead].
package dispatchloop
