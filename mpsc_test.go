package dispatchloop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMPSCInbox_MultiProducerOrderingPerProducer(t *testing.T) {
	q := newMPSCInbox(256)
	const producers = 4
	const perProducer = 200

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.Push(NewEnvelope(p*perProducer + i)) {
				}
			}
		}(p)
	}
	seen := make(map[int]bool)
	next := make([]int, producers)
	for i := 0; i < producers*perProducer; i++ {
		e, ok := q.PopSpin()
		require.True(t, ok)
		v := e.Payload().(int)
		p := v / perProducer
		require.Equal(t, next[p], v%perProducer)
		next[p]++
		seen[v] = true
	}
	wg.Wait()
	require.Len(t, seen, producers*perProducer)
}

func TestMPSCInbox_TryPopEmpty(t *testing.T) {
	q := newMPSCInbox(4)
	_, ok := q.TryPop()
	require.False(t, ok)
}

func TestMPSCInbox_StopUnblocksPopSpin(t *testing.T) {
	q := newMPSCInbox(4)
	done := make(chan bool, 1)
	go func() {
		_, ok := q.PopSpin()
		done <- ok
	}()
	q.Stop()
	require.False(t, <-done)
}
