// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import "fmt"

// OverflowError is returned by [EnqueueFunc], [EnqueueFuncTID],
// [EnqueueLoop], and [EnqueueLoopSeq] when the thread manager's task
// queue is full. It carries the rejected work back to the caller so the
// future it already handed out still eventually completes: the caller
// runs Task() inline (typically passing [UnmanagedThreadID]) and then
// retrieves the result through GetFuture(), preserving the contract
// that every returned future resolves.
//
// For a rejected parallel-for chunk, BeginOffset and NumOfIterations
// describe the sub-range Task() will run when invoked; for a rejected
// single-shot enqueue both are zero.
type OverflowError[R any] struct {
	task          taskFunc
	future        *Future[R]
	beginOffset   int
	numIterations int
}

// Error implements the error interface.
func (e *OverflowError[R]) Error() string {
	if e.numIterations > 0 {
		return fmt.Sprintf("concore: task queue full, rejected %d loop iterations starting at offset %d", e.numIterations, e.beginOffset)
	}
	return "concore: task queue full, rejected task"
}

// Task returns the rejected work as a runnable closure. Invoke it with
// the calling goroutine's thread id, or [UnmanagedThreadID] if called
// from outside the pool, to run it inline and complete GetFuture().
func (e *OverflowError[R]) Task() func(threadID int) {
	return e.task
}

// GetFuture returns the future the rejected task would have completed.
// It resolves once Task() has been invoked.
func (e *OverflowError[R]) GetFuture() *Future[R] {
	return e.future
}

// BeginOffset returns the first not-yet-submitted loop index for a
// rejected parallel-for chunk. Zero for a rejected single-shot task.
func (e *OverflowError[R]) BeginOffset() int { return e.beginOffset }

// NumOfIterations returns the count of not-yet-submitted loop indices
// for a rejected parallel-for chunk. Zero for a rejected single-shot
// task.
func (e *OverflowError[R]) NumOfIterations() int { return e.numIterations }
