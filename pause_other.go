//go:build !linux

package dispatchloop

import "runtime"

// yieldOS falls back to the Go scheduler's own yield on platforms without a
// direct sched_yield binding wired in.
func yieldOS() {
	runtime.Gosched()
}
