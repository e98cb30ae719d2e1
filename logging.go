package dispatchloop

import (
	"reflect"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// NewDefaultLogger returns a *logiface.Logger backed by stumpy, the compact
// JSON logiface writer this package declares as its logging backend (see
// [WithLogger]). Writes go to stderr, matching stumpy's own default.
func NewDefaultLogger() *logiface.Logger[*stumpy.Event] {
	return stumpy.L.New(stumpy.L.WithStumpy())
}

// The log helpers below are nil-safe: WithLogger defaults to nil, and
// logiface.Logger's Build returns nil for a nil receiver, so every log call
// in this package is a plain method chain with no branch for "logging
// disabled".

func logReceiverStart(logger *logiface.Logger[*stumpy.Event], name string, threadHosted bool) {
	logger.Info().
		Str(`receiver`, name).
		Bool(`thread_hosted`, threadHosted).
		Log(`receiver starting`)
}

func logReceiverStop(logger *logiface.Logger[*stumpy.Event], name string) {
	logger.Info().
		Str(`receiver`, name).
		Log(`receiver stopped`)
}

func logInboxKind(logger *logiface.Logger[*stumpy.Event], name string, kind string, producers int) {
	logger.Debug().
		Str(`receiver`, name).
		Str(`inbox_kind`, kind).
		Int64(`producer_count`, int64(producers)).
		Log(`topology selected inbox kind`)
}

func logCapacityDrop(logger *logiface.Logger[*stumpy.Event], queue string, eventType reflect.Type) {
	logger.Warning().
		Str(`queue`, queue).
		Str(`event_type`, eventType.String()).
		Log(`dropped event: queue full`)
}

func logExternalEmitRejected(logger *logiface.Logger[*stumpy.Event], producer string) {
	logger.Notice().
		Str(`producer`, producer).
		Log(`external emit rejected: loop is dead`)
}
