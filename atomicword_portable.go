// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package concore

import "sync"

// AtomicWord is the portable implementation of the contract documented
// in atomicword.go, used on every GOOS without a wired futex /
// wait-on-address binding in this module's dependency set (see
// DESIGN.md). It pairs the 32-bit cell with a mutex and condition
// variable: Wait re-checks the cell under the lock before blocking on
// the condvar, which is exactly how a predicate-checked sync.Cond.Wait
// loop must be written regardless of platform.
type AtomicWord struct {
	_     noCopy
	mu    sync.Mutex
	cond  sync.Cond
	value int32
	once  sync.Once
}

func (w *AtomicWord) init() {
	w.once.Do(func() { w.cond.L = &w.mu })
}

// Load reads the cell's current value.
func (w *AtomicWord) Load(order MemoryOrder) int32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Store writes value into the cell and wakes nobody; callers that need
// to wake waiters call NotifyOne/NotifyAll explicitly, matching the
// spec's separate store/notify operations.
func (w *AtomicWord) Store(value int32, order MemoryOrder) {
	w.mu.Lock()
	w.value = value
	w.mu.Unlock()
}

// Wait blocks the calling goroutine while Load(order) == old, re-checking
// after every wake (spurious or real) before returning or blocking again.
func (w *AtomicWord) Wait(old int32, order MemoryOrder) {
	w.init()
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.value == old {
		w.cond.Wait()
	}
}

// NotifyOne wakes at most one goroutine blocked in Wait on this cell.
func (w *AtomicWord) NotifyOne() {
	w.init()
	w.mu.Lock()
	w.cond.Signal()
	w.mu.Unlock()
}

// NotifyAll wakes every goroutine blocked in Wait on this cell.
func (w *AtomicWord) NotifyAll() {
	w.init()
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}
