package dispatchloop

import "reflect"

// Cloner is implemented by event payload types that want explicit control
// over copy-construction during fan-out. When a payload does not implement
// Cloner, fan-out passes the same value to every recipient, the last one
// included — Clone lets a payload with reference-typed fields (slices, pointers) make
// that copy independent, and lets tests count copies against the fan-out
// move policy in the core spec.
type Cloner interface {
	// Clone returns an independent copy of the receiver.
	Clone() any
}

// Envelope is the tagged container placed on every queue in this package:
// the local ring buffer, the SPSC/MPSC inboxes, and the dual mailbox. The
// tag is the payload's dynamic reflect.Type; a zero-value Envelope is
// uninitialized (Type returns nil).
type Envelope struct {
	typ     reflect.Type
	payload any
}

// NewEnvelope constructs an Envelope carrying v, tagged with v's dynamic
// type.
func NewEnvelope(v any) Envelope {
	return Envelope{typ: reflect.TypeOf(v), payload: v}
}

// Type returns the envelope's tag, or nil if the envelope is uninitialized.
func (e Envelope) Type() reflect.Type { return e.typ }

// Payload returns the carried value.
func (e Envelope) Payload() any { return e.payload }

// Valid reports whether the envelope currently carries a payload.
func (e Envelope) Valid() bool { return e.typ != nil }

// Reset clears the envelope so its payload can be garbage collected. Every
// queue in this package clears the slot it just handed out, so no queue
// keeps a delivered payload reachable.
func (e *Envelope) Reset() {
	e.typ = nil
	e.payload = nil
}

// clonePayload implements the fan-out copy/move policy for a single
// recipient: the caller passes isLast=false for every recipient but the
// final one in a fan-out list.
func clonePayload(v any, isLast bool) any {
	if isLast {
		return v
	}
	if c, ok := v.(Cloner); ok {
		return c.Clone()
	}
	return v
}
