package dispatchloop

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// loopOptions holds configuration resolved at Loop construction time.
type loopOptions struct {
	logger            *logiface.Logger[*stumpy.Event]
	defaultInboxCap   int
	hybridSpinCount   int
	mailboxLocalCap   int
	mailboxSharedInit int
}

// LoopOption configures a Loop instance, following the functional-options
// pattern: each option mutates a private config struct resolved once by
// New/Build.
type LoopOption interface {
	applyLoop(*loopOptions) error
}

type loopOptionFunc func(*loopOptions) error

func (f loopOptionFunc) applyLoop(o *loopOptions) error { return f(o) }

// WithLogger attaches a structured logger to the loop. Receiver
// start/stop, inbox-full rejects, external-emitter rejects, and topology
// decisions are logged through it. A nil logger (the default) disables
// logging entirely; logiface.Logger is nil-safe to call. Use
// [NewDefaultLogger] for a ready-made stumpy-backed logger.
func WithLogger(logger *logiface.Logger[*stumpy.Event]) LoopOption {
	return loopOptionFunc(func(o *loopOptions) error {
		o.logger = logger
		return nil
	})
}

// WithDefaultInboxCapacity sets the power-of-two capacity used for a
// thread-hosted receiver's inbox when its declaration does not specify one
// explicitly. Defaults to 256.
func WithDefaultInboxCapacity(capacity int) LoopOption {
	return loopOptionFunc(func(o *loopOptions) error {
		if capacity <= 0 || capacity&(capacity-1) != 0 {
			return wireErr(nil, nil, "default inbox capacity must be a positive power of two")
		}
		o.defaultInboxCap = capacity
		return nil
	})
}

// WithHybridSpinCount configures the empty-poll threshold at which a
// [Hybrid] strategy obtained via [Loop.DefaultHybrid] falls back to a
// blocking wait. Defaults to 1000. Has no effect on a [Hybrid] constructed
// directly via [NewHybrid], which takes its own explicit spin limit.
func WithHybridSpinCount(count int) LoopOption {
	return loopOptionFunc(func(o *loopOptions) error {
		if count <= 0 {
			return wireErr(nil, nil, "hybrid spin count must be positive")
		}
		o.hybridSpinCount = count
		return nil
	})
}

// WithMailboxCapacity sets the local ring buffer capacity (power of two) and
// the initial capacity hint for the shared FIFO of the loop's dual mailbox.
func WithMailboxCapacity(local, sharedInit int) LoopOption {
	return loopOptionFunc(func(o *loopOptions) error {
		if local <= 0 || local&(local-1) != 0 {
			return wireErr(nil, nil, "mailbox local capacity must be a positive power of two")
		}
		if sharedInit < 0 {
			return wireErr(nil, nil, "mailbox shared initial capacity must be non-negative")
		}
		o.mailboxLocalCap = local
		o.mailboxSharedInit = sharedInit
		return nil
	})
}

// resolveLoopOptions applies LoopOption instances over the defaults.
func resolveLoopOptions(opts []LoopOption) (*loopOptions, error) {
	cfg := &loopOptions{
		defaultInboxCap:   256,
		hybridSpinCount:   1000,
		mailboxLocalCap:   256,
		mailboxSharedInit: 64,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
