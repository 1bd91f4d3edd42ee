// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

// MemoryOrder selects the memory ordering of an [AtomicWord] load or
// store. It mirrors the explicit-order method families
// [code.hybscloud.com/atomix] exposes per type (LoadAcquire, StoreRelease,
// ...); AtomicWord threads the order through a runtime parameter instead,
// since its contract (spec: "load/store at a chosen memory order") needs
// it selectable at the call site rather than baked into the method name.
type MemoryOrder uint8

const (
	// OrderRelaxed imposes no ordering constraint beyond atomicity.
	OrderRelaxed MemoryOrder = iota
	// OrderAcquire prevents subsequent memory operations from being
	// reordered before this load.
	OrderAcquire
	// OrderRelease prevents preceding memory operations from being
	// reordered after this store.
	OrderRelease
	// OrderAcqRel combines OrderAcquire and OrderRelease.
	OrderAcqRel
	// OrderSeqCst additionally establishes a single total order across
	// all seq-cst operations.
	OrderSeqCst
)

// AtomicWord is a 32-bit signed cell supporting atomic load/store and
// blocking wait/notify on its value. It is the primitive the thread
// manager's task-queue "not empty" doorbell and its per-future
// completion signal are built on; the ring queues themselves never
// block.
//
// AtomicWord must not be copied after first use.
//
// Two implementations share this type's contract (spec section 4.1):
// a Linux build uses FUTEX_WAIT/FUTEX_WAKE directly against the cell's
// address; every other GOOS falls back to a sync.Mutex + sync.Cond pair
// that re-checks the cell under the lock. Both re-check the word on
// wake (spurious-wake and lost-wake safety), return immediately from
// Wait if the comparison already fails, and correctly deliver a notify
// that raced ahead of the next Wait call.
//
// See atomicword_linux.go and atomicword_portable.go for the two
// implementations.
type atomicWordContract interface {
	Load(order MemoryOrder) int32
	Store(value int32, order MemoryOrder)
	Wait(old int32, order MemoryOrder)
	NotifyOne()
	NotifyAll()
}

var _ atomicWordContract = (*AtomicWord)(nil)
