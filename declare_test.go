package dispatchloop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type dummyReceiver struct{}

func (dummyReceiver) OnEvent(Envelope, *Handle) {}

func TestNew_RejectsDuplicateReceiverType(t *testing.T) {
	a := &dummyReceiver{}
	b := &dummyReceiver{}
	_, err := New([]Declaration{
		LoopHosted(a, On[pingEvent]()),
		LoopHosted(b, On[pongEvent]()),
	})
	require.Error(t, err)
	var wiring *AggregateError
	require.ErrorAs(t, err, &wiring)
}

func TestBuilder_BuildsRunnableLoop(t *testing.T) {
	pong := &pongReceiver{}
	loop, err := NewBuilder().
		LoopHosted(pong, On[pingEvent](), CanEmit[pongEvent]()).
		Build()
	require.NoError(t, err)
	require.NotNil(t, loop)
	require.Equal(t, StateIdle, loop.state.Load())
}

func TestHandle_RejectsUndeclaredEmit(t *testing.T) {
	pong := &pongReceiver{}
	loop, err := New([]Declaration{
		LoopHosted(pong, On[pingEvent]()),
	})
	require.NoError(t, err)

	h := newHandle(loop, "pong", true, nil)
	err = h.Emit(pongEvent{n: 1})
	var wiring *WiringError
	require.ErrorAs(t, err, &wiring)
}

func TestWithHybridSpinCount_ConfiguresDefaultHybrid(t *testing.T) {
	loop, err := New(nil, WithHybridSpinCount(7))
	require.NoError(t, err)
	require.Equal(t, 7, loop.DefaultHybrid().spinLimit)
}

func TestGet_ReturnsRegisteredReceiver(t *testing.T) {
	pong := &pongReceiver{}
	loop, err := New([]Declaration{
		LoopHosted(pong, On[pingEvent](), CanEmit[pongEvent]()),
	})
	require.NoError(t, err)

	got, ok := Get[*pongReceiver](loop)
	require.True(t, ok)
	require.Same(t, pong, got)
}

func TestTopology_SelectsSPSCForSingleProducer(t *testing.T) {
	echo := &echoThreadReceiver{}
	pong := &pongReceiver{}
	loop, err := New([]Declaration{
		LoopHosted(pong, On[pingEvent](), CanEmit[pongEvent]()),
		ThreadHosted(echo, On[pongEvent]()),
	})
	require.NoError(t, err)
	require.Equal(t, "spsc", loop.topology.inboxKind[loop.declOf(echo)])
}

func TestTopology_CollapsesMultipleLoopHostedEmittersToSingleProducer(t *testing.T) {
	echo := &echoThreadReceiver{}
	p1 := &pongReceiver{}
	p2 := &dummyReceiver{}
	loop, err := New([]Declaration{
		LoopHosted(p1, CanEmit[pongEvent]()),
		LoopHosted(p2, CanEmit[pongEvent]()),
		ThreadHosted(echo, On[pongEvent]()),
	})
	require.NoError(t, err)
	require.Equal(t, 1, loop.topology.producerCount[loop.declOf(echo)])
	require.Equal(t, "spsc", loop.topology.inboxKind[loop.declOf(echo)])
}

func TestTopology_SelectsMPSCForMultipleProducerClasses(t *testing.T) {
	echo := &echoThreadReceiver{}
	p1 := &pongReceiver{}
	loop, err := New([]Declaration{
		LoopHosted(p1, CanEmit[pongEvent]()),
		External("ext", CanEmit[pongEvent]()),
		ThreadHosted(echo, On[pongEvent]()),
	})
	require.NoError(t, err)
	require.Equal(t, 2, loop.topology.producerCount[loop.declOf(echo)])
	require.Equal(t, "mpsc", loop.topology.inboxKind[loop.declOf(echo)])
}
