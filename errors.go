// Package dispatchloop provides a statically-wired, type-directed
// in-process event dispatcher.
package dispatchloop

import (
	"errors"
	"fmt"
	"reflect"

	"code.hybscloud.com/iox"
)

// WiringError reports a topology violation: a duplicate receiver type or an
// invalid option, returned from Build/New; an emit outside a declared emit
// set, returned from Handle.Emit or ExternalEmitter.Emit; or an unregistered
// external-producer name, returned from SharedLoop.NewEmitter.
type WiringError struct {
	Receiver reflect.Type
	Event    reflect.Type
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *WiringError) Error() string {
	switch {
	case e.Receiver != nil && e.Event != nil:
		return fmt.Sprintf("dispatchloop: wiring error: %s (receiver=%s event=%s)", e.Message, e.Receiver, e.Event)
	case e.Receiver != nil:
		return fmt.Sprintf("dispatchloop: wiring error: %s (receiver=%s)", e.Message, e.Receiver)
	default:
		return fmt.Sprintf("dispatchloop: wiring error: %s", e.Message)
	}
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *WiringError) Unwrap() error { return e.Cause }

// AggregateError collects several errors from one call: every WiringError
// discovered during a single Build/New call, so a caller sees every topology
// violation at once instead of only the first, or every CapacityError of a
// single emit whose fan-out was rejected by more than one queue.
type AggregateError struct {
	Errors []error
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("dispatchloop: %d wiring errors (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap returns the errors slice for multi-error unwrapping. This enables
// [errors.Is] and [errors.As] to check against all errors in the aggregate.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Is implements custom error matching for AggregateError. Returns true if
// target is an AggregateError (regardless of contents).
func (e *AggregateError) Is(target error) bool {
	var aggTarget *AggregateError
	return errors.As(target, &aggTarget)
}

// CapacityError reports a run-time push rejected because an inbox or the
// loop mailbox was full. It is recoverable: the caller decides whether to
// drop or retry, per the core spec's queue-full policy. It unwraps to
// [iox.ErrWouldBlock], the ecosystem's non-failure control-flow sentinel for
// exactly this condition, so callers already written against it (via
// [errors.Is] or [iox.IsWouldBlock]) recognize a dropped event the same way
// they'd recognize a full lock-free queue.
type CapacityError struct {
	Event reflect.Type
	Queue string
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("dispatchloop: %s is full, dropped event %s", e.Queue, e.Event)
}

// Unwrap returns [iox.ErrWouldBlock] for use with [errors.Is].
func (e *CapacityError) Unwrap() error { return iox.ErrWouldBlock }

// ErrLoopDead is returned by an external emitter handle whose Loop has
// already been destroyed (SharedLoop's last strong reference dropped). It is
// also the sentinel wrapped by LivenessError.
var ErrLoopDead = errors.New("dispatchloop: loop is no longer alive")

// LivenessError reports an emit attempted through an external-producer
// handle after the owning Loop has died. Unwraps to ErrLoopDead.
type LivenessError struct {
	Producer string
}

// Error implements the error interface.
func (e *LivenessError) Error() string {
	return fmt.Sprintf("dispatchloop: external producer %q: %v", e.Producer, ErrLoopDead)
}

// Unwrap returns ErrLoopDead for use with [errors.Is].
func (e *LivenessError) Unwrap() error { return ErrLoopDead }

// WrapError wraps an error with a message and cause chain.
//
// The result satisfies errors.Is(result, cause) == true.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}

// wireErr is a small constructor helper used throughout topology validation.
func wireErr(receiver, event reflect.Type, message string) *WiringError {
	return &WiringError{Receiver: receiver, Event: event, Message: message}
}
