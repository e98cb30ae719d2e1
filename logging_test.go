package dispatchloop

import (
	"bytes"
	"testing"
	"time"

	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

func TestWithLogger_WritesStumpyJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(&buf)))

	echo := &echoThreadReceiver{}
	loop, err := New([]Declaration{
		ThreadHosted(echo, On[pingEvent]()),
	}, WithLogger(logger))
	require.NoError(t, err)
	loop.Start()

	require.NoError(t, loop.Emit(pingEvent{n: 0}))
	require.Eventually(t, func() bool { return echo.count.Load() >= 1 }, time.Second, time.Millisecond)

	loop.Stop()
	require.Contains(t, buf.String(), `"receiver starting"`)
	require.Contains(t, buf.String(), `"receiver stopped"`)
}

func TestNewDefaultLogger_ReturnsUsableLogger(t *testing.T) {
	logger := NewDefaultLogger()
	require.NotNil(t, logger)

	pong := &pongReceiver{}
	loop, err := New([]Declaration{
		LoopHosted(pong, On[pingEvent](), CanEmit[pongEvent]()),
	}, WithLogger(logger))
	require.NoError(t, err)
	loop.Start()
	defer loop.Stop()

	require.NoError(t, loop.Emit(pingEvent{n: 0}))
	require.Eventually(t, func() bool {
		Spin{}.Poll(loop)
		return pong.count.Load() >= 1
	}, time.Second, time.Millisecond)
}
