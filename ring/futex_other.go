//go:build !linux

package ring

import "runtime"

// futexWait has no OS primitive to fall back on for this platform, so
// it busy-waits: a brief Gosched to let the writer run, then returns
// so the caller re-checks its condition. Correctness does not depend
// on this function ever blocking.
func futexWait(word *uint32, expect uint32) {
	runtime.Gosched()
}

// futexWakeAll is a no-op: there are no real waiters to wake on this
// platform, only spinners that will notice the new value on their
// next poll.
func futexWakeAll(word *uint32) {}
