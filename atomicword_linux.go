// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package concore

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// AtomicWord is the Linux, futex-backed implementation of the contract
// documented in atomicword.go. The cell is a bare *int32; its address is
// handed straight to the FUTEX_WAIT_PRIVATE / FUTEX_WAKE_PRIVATE syscalls,
// so AtomicWord deliberately does not route its value through
// [code.hybscloud.com/atomix]: atomix's wrapper types don't publish their
// internal field layout as part of their contract, and a futex needs the
// literal address of a plain int32. sync/atomic's stdlib int32 ops are
// used instead for the non-blocking Load/Store paths (see DESIGN.md).
type AtomicWord struct {
	_     noCopy
	value int32
}

// Load reads the cell's current value.
func (w *AtomicWord) Load(order MemoryOrder) int32 {
	switch order {
	case OrderRelaxed:
		return atomic.LoadInt32(&w.value) // relaxed unavailable on this arch; acquire is a safe superset
	default:
		return atomic.LoadInt32(&w.value)
	}
}

// Store writes value into the cell.
func (w *AtomicWord) Store(value int32, order MemoryOrder) {
	atomic.StoreInt32(&w.value, value)
}

// Wait blocks the calling goroutine while Load(order) == old. It returns
// immediately if the value has already changed by the time Wait is
// called, returns on a matching NotifyOne/NotifyAll, and re-checks the
// value after every spurious wake before blocking again.
func (w *AtomicWord) Wait(old int32, order MemoryOrder) {
	for {
		if w.Load(order) != old {
			return
		}
		_, _, errno := unix.Syscall6(
			unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(&w.value)),
			uintptr(linuxFutexWaitPrivate),
			uintptr(uint32(old)),
			0, 0, 0,
		)
		// EAGAIN: the value already changed between our check and the
		// syscall — loop and re-check. EINTR: spurious wake, re-check.
		if errno != 0 && errno != unix.EAGAIN && errno != unix.EINTR {
			return
		}
		if w.Load(order) != old {
			return
		}
	}
}

// NotifyOne wakes at most one goroutine blocked in Wait on this cell.
func (w *AtomicWord) NotifyOne() {
	unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&w.value)),
		uintptr(linuxFutexWakePrivate),
		1, 0, 0, 0,
	)
}

// NotifyAll wakes every goroutine blocked in Wait on this cell.
func (w *AtomicWord) NotifyAll() {
	unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&w.value)),
		uintptr(linuxFutexWakePrivate),
		uintptr(^uint32(0)>>1),
		0, 0, 0,
	)
}

const (
	linuxFutexWaitPrivate = unix.FUTEX_WAIT | unix.FUTEX_PRIVATE_FLAG
	linuxFutexWakePrivate = unix.FUTEX_WAKE | unix.FUTEX_PRIVATE_FLAG
)
