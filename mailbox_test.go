package dispatchloop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDualMailbox_LocalFIFO(t *testing.T) {
	m := newDualMailbox(4, 4)
	require.True(t, m.PushLocal(NewEnvelope(1)))
	require.True(t, m.PushLocal(NewEnvelope(2)))

	e, ok := m.TryPop()
	require.True(t, ok)
	require.Equal(t, 1, e.Payload())
}

func TestDualMailbox_RemoteDrainsIntoLocal(t *testing.T) {
	m := newDualMailbox(4, 4)
	require.True(t, m.PushRemote(NewEnvelope(1)))
	require.True(t, m.PushRemote(NewEnvelope(2)))

	e, ok := m.TryPop()
	require.True(t, ok)
	require.Equal(t, 1, e.Payload())

	e, ok = m.TryPop()
	require.True(t, ok)
	require.Equal(t, 2, e.Payload())
}

func TestDualMailbox_WaitPopBlocksUntilPush(t *testing.T) {
	m := newDualMailbox(4, 4)
	var wg sync.WaitGroup
	wg.Add(1)
	var got Envelope
	var ok bool
	go func() {
		defer wg.Done()
		got, ok = m.WaitPop()
	}()

	m.PushRemote(NewEnvelope(99))
	wg.Wait()
	require.True(t, ok)
	require.Equal(t, 99, got.Payload())
}

func TestDualMailbox_StopUnblocksWaitPop(t *testing.T) {
	m := newDualMailbox(4, 4)
	done := make(chan bool, 1)
	go func() {
		_, ok := m.WaitPop()
		done <- ok
	}()
	m.Stop()
	require.False(t, <-done)
}
