package dispatchloop

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSharedLoop_ExternalEmitterRoutesIntoLoop(t *testing.T) {
	pong := &pongReceiver{}
	loop, err := New([]Declaration{
		LoopHosted(pong, On[pingEvent](), CanEmit[pongEvent]()),
		External("sensor", CanEmit[pingEvent]()),
	})
	require.NoError(t, err)
	loop.Start()
	defer loop.Stop()

	shared := NewSharedLoop(loop)
	emitter, err := shared.NewEmitter("sensor")
	require.NoError(t, err)
	require.True(t, emitter.IsValid())

	require.NoError(t, emitter.Emit(pingEvent{n: 1}))
	Spin{}.RunWhile(loop, func() bool { return pong.count.Load() < 1 })
	require.Equal(t, int64(1), pong.count.Load())
}

func TestSharedLoop_NewEmitterRejectsUnknownName(t *testing.T) {
	loop, err := New(nil)
	require.NoError(t, err)
	shared := NewSharedLoop(loop)
	_, err = shared.NewEmitter("nope")
	var wiring *WiringError
	require.ErrorAs(t, err, &wiring)
}

func TestExternalEmitter_RejectsUndeclaredType(t *testing.T) {
	loop, err := New([]Declaration{
		External("sensor", CanEmit[pingEvent]()),
	})
	require.NoError(t, err)
	shared := NewSharedLoop(loop)
	emitter, err := shared.NewEmitter("sensor")
	require.NoError(t, err)

	err = emitter.Emit(pongEvent{n: 1})
	var wiring *WiringError
	require.ErrorAs(t, err, &wiring)
}

func TestExternalEmitter_InvalidAfterLoopCollected(t *testing.T) {
	makeEmitter := func() *ExternalEmitter {
		loop, err := New([]Declaration{
			External("sensor", CanEmit[pingEvent]()),
		})
		require.NoError(t, err)
		shared := NewSharedLoop(loop)
		emitter, err := shared.NewEmitter("sensor")
		require.NoError(t, err)
		return emitter
		// shared, and the only strong *Loop reference, fall out of scope here.
	}

	emitter := makeEmitter()

	collected := false
	for i := 0; i < 10; i++ {
		runtime.GC()
		if !emitter.IsValid() {
			collected = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, collected, "weak pointer should observe collection")
}
