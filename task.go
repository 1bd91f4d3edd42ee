// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"fmt"
	"sync"

	"code.hybscloud.com/atomix"
)

// taskFunc is the type-erased unit of work the thread manager's task
// queue carries. The spec's design notes offer a choice between a
// tagged-variant closure representation and a pair of function
// pointers plus an aligned buffer; a plain Go closure capturing its own
// state is the idiomatic equivalent of either — Go closures already are
// a (code pointer, captured-environment pointer) pair with no
// additional boilerplate needed to reach the same shape.
type taskFunc func(threadID int)

// taskHandle is what actually flows through the task queue: the
// runnable closure plus what to do if the handle is dropped unrun
// (thread manager Clear or Close draining the queue). abandon must be
// safe to call instead of invoke, never both.
type taskHandle struct {
	invoke  taskFunc
	abandon func()
}

// safeCall invokes fn and recovers a panic into an error, the way the
// thread manager's worker loop must so that a panicking task closure
// cannot kill a worker goroutine — the Go-native analogue of the spec's
// "exceptions thrown inside a task closure are caught by the worker...
// re-raised on Future.get()".
func safeCall[R any](fn func() R) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("concore: task panicked: %v", r)
		}
	}()
	result = fn()
	return
}

// singleTask builds the taskHandle for a one-shot enqueue. If dependent
// is set, the task blocks on armed before running — the mechanism the
// spec describes for chaining without a separate graph scheduler.
// abandon completes the same cell with [ErrAbandoned] instead of
// running fn, for when the handle is dropped from the queue unrun.
func singleTask[R any](fn func(threadID int) R, cell *resultCell[R], armed *AtomicWord) taskHandle {
	return taskHandle{
		invoke: func(threadID int) {
			if armed != nil {
				armed.Wait(0, OrderAcquire)
			}
			result, err := safeCall(func() R { return fn(threadID) })
			cell.complete(result, err)
		},
		abandon: cell.abandon,
	}
}

// loopSubtask builds the taskHandle for one index of a parallel-for fan
// out. All K subtasks of a single enqueueLoop share remaining and cell;
// the invocation that drives remaining to zero completes the future.
// Abandoning one subtask still counts toward remaining so the shared
// future settles once every subtask, run or abandoned, has finished.
func loopSubtask(fn func(i, threadID int), i int, remaining *sharedCounter, cell *resultCell[struct{}], armed *AtomicWord) taskHandle {
	return taskHandle{
		invoke: func(threadID int) {
			if armed != nil {
				armed.Wait(0, OrderAcquire)
			}
			_, err := safeCall(func() struct{} {
				fn(i, threadID)
				return struct{}{}
			})
			remaining.finishOne(err, cell)
		},
		abandon: func() {
			remaining.finishOne(ErrAbandoned, cell)
		},
	}
}

// runLoopRange executes fn(i, threadID) for every i in
// [begin, begin+count), decrementing the shared counter after each and
// completing cell once it reaches zero. This is what the closure
// returned by [OverflowError.Task] runs for a rejected parallel-for chunk:
// it is exactly what a worker would have done for each of those
// subtasks, just run synchronously on the caller's goroutine.
func runLoopRange(fn func(i, threadID int), begin, count int, remaining *sharedCounter, cell *resultCell[struct{}], threadID int) {
	for i := begin; i < begin+count; i++ {
		_, err := safeCall(func() struct{} {
			fn(i, threadID)
			return struct{}{}
		})
		remaining.finishOne(err, cell)
	}
}

// sharedCounter is the remaining-invocation counter a parallel-for's
// subtasks share. The last invocation to observe it reach zero
// completes the shared future.
type sharedCounter struct {
	remaining atomix.Int64
	mu        sync.Mutex
	firstErr  error
}

func newSharedCounter(n int) *sharedCounter {
	c := &sharedCounter{}
	c.remaining.StoreRelaxed(int64(n))
	return c
}

func (c *sharedCounter) finishOne(err error, cell *resultCell[struct{}]) {
	if err != nil {
		c.mu.Lock()
		if c.firstErr == nil {
			c.firstErr = err
		}
		c.mu.Unlock()
	}
	if c.remaining.AddAcqRel(-1) == 0 {
		c.mu.Lock()
		first := c.firstErr
		c.mu.Unlock()
		if first == ErrAbandoned {
			cell.abandon()
			return
		}
		cell.complete(struct{}{}, first)
	}
}
