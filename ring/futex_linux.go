//go:build linux

package ring

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// futexWait blocks until word no longer equals expect, or until
// another goroutine calls futexWakeAll on the same address. A
// mismatch or a spurious wake both return immediately; callers must
// re-check their own condition, which ReadSpin does.
func futexWait(word *uint32, expect uint32) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(word)),
		uintptr(unix.FUTEX_WAIT),
		uintptr(expect),
		0, 0, 0,
	)
}

// futexWakeAll wakes every waiter currently blocked on word.
func futexWakeAll(word *uint32) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(word)),
		uintptr(unix.FUTEX_WAKE),
		uintptr(1<<31-1),
		0, 0, 0,
	)
}
