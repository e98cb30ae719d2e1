package dispatchloop

import (
	"bytes"
	"runtime"
	"strconv"
)

// nextPow2 rounds n up to the next power of two, with a floor of 2 so every
// ring's mask (n-1) is non-zero.
func nextPow2(n int) int {
	if n < 2 {
		return 2
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// currentGoroutineID parses the calling goroutine's numeric ID out of a
// runtime.Stack trace.
//
// This is used only by Loop.Start, to record the loop goroutine, and by
// Loop.Emit, to decide whether the caller is the loop goroutine (local
// mailbox push) or some other goroutine (remote push); per
// the core spec's design notes, every other emit path is statically
// loop-origin or thread-origin via the Handle the caller holds, and never
// needs a runtime thread check.
func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}
