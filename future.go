// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import "code.hybscloud.com/atomix"

const (
	cellPending   int32 = 0
	cellReady     int32 = 1
	cellAbandoned int32 = 2
)

// resultCell is the single result slot a [Future] and its producing
// task jointly reference. A future and its task both hold a pointer to
// the same cell; there is nothing to reference-count in Go since the
// garbage collector reclaims the cell once both the task closure and
// every Future referring to it have gone out of scope.
//
// state and word are deliberately separate: state is CAS-guarded (via
// [code.hybscloud.com/atomix]) so a completing task and a concurrent
// abandonment (thread manager Clear/Close racing a worker that already
// claimed the task) can never both "win" — whichever transitions state
// out of cellPending first sticks. word is the blocking wait/notify
// primitive a waiter blocks on; it only ever needs to distinguish
// "still pending" from "settled" (in either final state).
type resultCell[R any] struct {
	word  AtomicWord
	state atomix.Int32
	value R
	err   error
}

func (c *resultCell[R]) complete(value R, err error) {
	if !c.state.CompareAndSwapAcqRel(cellPending, cellReady) {
		return
	}
	c.value = value
	c.err = err
	c.word.Store(1, OrderRelease)
	c.word.NotifyAll()
}

func (c *resultCell[R]) abandon() {
	if !c.state.CompareAndSwapAcqRel(cellPending, cellAbandoned) {
		return
	}
	c.word.Store(1, OrderRelease)
	c.word.NotifyAll()
}

// Future is an owning handle to a single task's result. Dropping a
// Future without calling Wait or Get is legal: the task runs to
// completion regardless and its result is simply discarded (spec's
// open question on dropped-future semantics, resolved in DESIGN.md).
type Future[R any] struct {
	cell  *resultCell[R]
	armed *AtomicWord // non-nil only for a dependent task's future
}

// Valid reports whether the future still refers to a task that will
// (or did) produce a result. It becomes false once the owning
// [ThreadManager] is closed with this task still queued.
func (f *Future[R]) Valid() bool {
	return f.cell != nil && f.cell.state.LoadAcquire() != cellAbandoned
}

// Wait blocks until the task completes or is abandoned. It returns
// immediately if the result is already available.
func (f *Future[R]) Wait() {
	if f.cell == nil {
		return
	}
	for {
		if f.cell.word.Load(OrderAcquire) != 0 {
			return
		}
		f.cell.word.Wait(0, OrderAcquire)
	}
}

// Get waits for the task to complete and moves its result out. It
// returns [ErrAbandoned] if the owning thread manager was closed
// before the task ran, or the error recovered from a panicking task
// closure.
func (f *Future[R]) Get() (R, error) {
	var zero R
	if f.cell == nil {
		return zero, ErrAbandoned
	}
	f.Wait()
	if f.cell.state.LoadAcquire() == cellAbandoned {
		return zero, ErrAbandoned
	}
	return f.cell.value, f.cell.err
}

// Arm releases a dependent task enqueued with dependent=true, letting
// its worker proceed. Arm is idempotent; arming a future that was not
// created from a dependent enqueue is a no-op. This is the explicit
// "arm" operation the spec's open question leaves as a valid design
// choice alongside pure closure-capture chaining.
func (f *Future[R]) Arm() {
	if f.armed == nil {
		return
	}
	f.armed.Store(1, OrderRelease)
	f.armed.NotifyAll()
}
