// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"iter"
	"runtime"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// UnmanagedThreadID is passed to a task closure invoked outside any
// [ThreadManager] worker goroutine — most notably by
// [OverflowError.Task] when the caller runs a rejected task inline.
const UnmanagedThreadID = -1

// ThreadManager owns a fixed slice of worker goroutines draining a
// bounded task queue. It is the Go-native rendering of the spec's
// thread pool / task manager: the task queue is a
// [ScalableCircularQueue] specialised to [taskHandle], reusing the same
// two-ring free/alloc machinery the rest of the package already
// provides rather than a second, bespoke queue implementation.
//
// A ThreadManager must be closed with [ThreadManager.Close] once no
// longer needed; there is no finalizer, matching the teacher package's
// convention that cleanup is the caller's responsibility (lfq's queues
// are likewise never automatically torn down).
type ThreadManager struct {
	_ noCopy

	mu       sync.RWMutex // guards queue against concurrent SetCapacity/Close
	queue    *ScalableCircularQueue[taskHandle]
	doorbell AtomicWord // bumped and notified on every successful enqueue
	shutdown atomix.Bool
	inFlight atomix.Int64 // tasks accepted but not yet completed or abandoned

	numWorkers int
	wg         sync.WaitGroup
	resource   MemoryResource
}

// NewThreadManager creates a thread manager with workerCount worker
// goroutines and a task queue of the given capacity (rounded up to the
// next power of two, per [NewScalableCircularQueue]). Panics if
// workerCount < 1.
func NewThreadManager(workerCount int, queueCapacity int, opts ...Option) *ThreadManager {
	if workerCount < 1 {
		panic("concore: thread manager worker count must be >= 1")
	}
	cfg := newThreadManagerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	tm := &ThreadManager{
		queue:      NewScalableCircularQueue[taskHandle](queueCapacity),
		numWorkers: workerCount,
		resource:   cfg.resource,
	}
	tm.wg.Add(workerCount)
	for id := 0; id < workerCount; id++ {
		go tm.workerLoop(id)
	}
	return tm
}

// NewThreadManagerDefault creates a thread manager sized to
// runtime.GOMAXPROCS(0) workers and a queue capacity of 1024 — the
// Go-native analogue of the spec's "hardware concurrency" default,
// since Go schedules goroutines across GOMAXPROCS OS threads rather
// than exposing a literal core count the way std::thread::hardware_
// concurrency does.
func NewThreadManagerDefault(opts ...Option) *ThreadManager {
	return NewThreadManager(runtime.GOMAXPROCS(0), 1024, opts...)
}

// NumOfThreads returns the number of worker goroutines.
func (tm *ThreadManager) NumOfThreads() int { return tm.numWorkers }

// Resource returns the [MemoryResource] this manager was configured
// with via [WithMemoryResource] (or [DefaultMemoryResource] if none was
// given).
func (tm *ThreadManager) Resource() MemoryResource { return tm.resource }

// Capacity returns the task queue's usable capacity.
func (tm *ThreadManager) Capacity() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.queue.Cap()
}

// SetCapacity resizes the task queue. It is only legal to call while
// the manager is idle (no queued or in-flight tasks); callers violating
// this precondition get an error rather than silent corruption, since
// the check is cheap to make explicit here even though the underlying
// queue itself only documents the precondition.
func (tm *ThreadManager) SetCapacity(n int) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.inFlight.LoadAcquire() != 0 {
		return errBusy{}
	}
	tm.queue.SetCapacity(n)
	return nil
}

type errBusy struct{}

func (errBusy) Error() string { return "concore: thread manager is not idle" }

// ringBell wakes every worker blocked waiting for a task.
func (tm *ThreadManager) ringBell() {
	tm.doorbell.Store(tm.doorbell.Load(OrderRelaxed)+1, OrderRelease)
	tm.doorbell.NotifyAll()
}

// submit enqueues h and rings the doorbell once on success. It returns
// [ErrWouldBlock] unmodified on a full queue, leaving h untouched so the
// caller can fold it into an [OverflowError], and [ErrAbandoned] once
// the manager has been closed.
func (tm *ThreadManager) submit(h taskHandle) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if tm.shutdown.LoadAcquire() {
		return errAbandoned{}
	}
	if _, err := tm.queue.Enqueue(h); err != nil {
		return err
	}
	tm.inFlight.AddAcqRel(1)
	tm.ringBell()
	return nil
}

func (tm *ThreadManager) workerLoop(id int) {
	defer tm.wg.Done()
	for {
		// Capture the doorbell before trying to dequeue, so an enqueue
		// that lands after a failed dequeue changes the value and Wait
		// returns at once instead of sleeping through it.
		last := tm.doorbell.Load(OrderAcquire)
		tm.mu.RLock()
		h, err := tm.queue.Dequeue()
		tm.mu.RUnlock()
		if err == nil {
			h.invoke(id)
			tm.inFlight.AddAcqRel(-1)
			continue
		}
		if tm.shutdown.LoadAcquire() {
			return
		}
		tm.doorbell.Wait(last, OrderAcquire)
	}
}

// WaitForCompletion blocks until every task enqueued so far has either
// run to completion or been abandoned. It does not prevent new tasks
// from being enqueued concurrently, matching the spec's "observes a
// momentary quiescent point, not a barrier" semantics.
func (tm *ThreadManager) WaitForCompletion() {
	backoff := iox.Backoff{}
	for tm.inFlight.LoadAcquire() != 0 {
		backoff.Wait()
	}
}

// IsEmpty reports whether the manager holds no accepted task: none
// queued and none still running. It counts a task a worker is
// mid-invoke of, so it does not tell an empty queue with busy workers
// apart from a queue with tasks waiting.
func (tm *ThreadManager) IsEmpty() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.inFlight.LoadAcquire() == 0
}

// Clear discards every task currently queued, abandoning their futures
// ([ErrAbandoned] from [Future.Get]) without running them. Tasks
// already claimed by a worker are unaffected and run to completion.
func (tm *ThreadManager) Clear() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for {
		h, err := tm.queue.Dequeue()
		if err != nil {
			return
		}
		h.abandon()
		tm.inFlight.AddAcqRel(-1)
	}
}

// Close stops accepting new work, abandons whatever remains queued, and
// waits for every worker goroutine to exit. It is the Go-idiomatic
// stand-in for the spec's destructor-driven shutdown; the teacher
// package has no analogous owning type to model this on since its
// queues are value types with no background goroutines to join.
func (tm *ThreadManager) Close() error {
	tm.shutdown.StoreRelease(true)
	tm.mu.Lock()
	for {
		h, err := tm.queue.Dequeue()
		if err != nil {
			break
		}
		h.abandon()
		tm.inFlight.AddAcqRel(-1)
	}
	tm.mu.Unlock()
	tm.ringBell()
	tm.wg.Wait()
	return nil
}

// EnqueueFunc submits a task that ignores which worker runs it. If
// dependent is true, the returned future's producing task blocks until
// [Future.Arm] is called — the explicit-arm chaining mechanism chosen
// over pure closure capture for the spec's dependent-task open
// question (documented in DESIGN.md).
func EnqueueFunc[R any](tm *ThreadManager, fn func() R, dependent bool) (*Future[R], error) {
	return EnqueueFuncTID(tm, func(int) R { return fn() }, dependent)
}

// EnqueueFuncTID submits a task that receives the worker's stable
// thread id (or [UnmanagedThreadID] if later run inline from an
// [OverflowError]).
func EnqueueFuncTID[R any](tm *ThreadManager, fn func(threadID int) R, dependent bool) (*Future[R], error) {
	cell := &resultCell[R]{}
	var armed *AtomicWord
	if dependent {
		armed = &AtomicWord{}
	}
	future := &Future[R]{cell: cell, armed: armed}

	h := singleTask(fn, cell, armed)
	if err := tm.submit(h); err != nil {
		if !IsWouldBlock(err) {
			// Manager is shut down, not merely full: there is no worker
			// left to ever run this task, so the future settles as
			// abandoned immediately rather than as a recoverable
			// overflow the caller could run inline.
			cell.abandon()
			return future, err
		}
		return future, &OverflowError[R]{task: h.invoke, future: future}
	}
	return future, nil
}

// EnqueueLoop submits fn(i, threadID) for every i in [begin, end) as
// independent subtasks sharing one future, settling once every subtask
// has run or been abandoned. If the queue fills partway through
// submission, the returned error is an [OverflowError] describing the
// still-unsubmitted suffix; the already-submitted prefix still runs and
// still contributes to the shared future.
func EnqueueLoop(tm *ThreadManager, fn func(i, threadID int), begin, end int, dependent bool) (*Future[struct{}], error) {
	if end <= begin {
		cell := &resultCell[struct{}]{}
		cell.complete(struct{}{}, nil)
		return &Future[struct{}]{cell: cell}, nil
	}

	count := end - begin
	cell := &resultCell[struct{}]{}
	var armed *AtomicWord
	if dependent {
		armed = &AtomicWord{}
	}
	future := &Future[struct{}]{cell: cell, armed: armed}
	remaining := newSharedCounter(count)

	for i := begin; i < end; i++ {
		h := loopSubtask(fn, i, remaining, cell, armed)
		if err := tm.submit(h); err != nil {
			if !IsWouldBlock(err) {
				// Manager is shut down: no worker will ever run the rest
				// of this range, so abandon every unsubmitted index
				// directly instead of handing back a task the caller has
				// no pool left to run it inline for.
				for j := i; j < end; j++ {
					remaining.finishOne(ErrAbandoned, cell)
				}
				return future, err
			}
			rejectedBegin := i
			rejectedCount := end - i
			task := func(threadID int) {
				runLoopRange(fn, rejectedBegin, rejectedCount, remaining, cell, threadID)
			}
			return future, &OverflowError[struct{}]{
				task:          task,
				future:        future,
				beginOffset:   rejectedBegin,
				numIterations: rejectedCount,
			}
		}
	}
	return future, nil
}

// EnqueueLoopSeq is the iterator-pair overload of [EnqueueLoop], the
// Go-native analogue of the spec's begin/end-iterator range using a Go
// 1.23 iter.Seq. Values are submitted in iteration order; on overflow
// the unsubmitted suffix is buffered so it can still be replayed by
// [OverflowError.Task].
func EnqueueLoopSeq(tm *ThreadManager, fn func(v, threadID int), seq iter.Seq[int], dependent bool) (*Future[struct{}], error) {
	var values []int
	for v := range seq {
		values = append(values, v)
	}
	if len(values) == 0 {
		cell := &resultCell[struct{}]{}
		cell.complete(struct{}{}, nil)
		return &Future[struct{}]{cell: cell}, nil
	}

	cell := &resultCell[struct{}]{}
	var armed *AtomicWord
	if dependent {
		armed = &AtomicWord{}
	}
	future := &Future[struct{}]{cell: cell, armed: armed}
	remaining := newSharedCounter(len(values))

	for i, v := range values {
		h := loopSubtask(fn, v, remaining, cell, armed)
		if err := tm.submit(h); err != nil {
			if !IsWouldBlock(err) {
				for j := i; j < len(values); j++ {
					remaining.finishOne(ErrAbandoned, cell)
				}
				return future, err
			}
			rest := append([]int(nil), values[i:]...)
			task := func(threadID int) {
				for _, v := range rest {
					_, err := safeCall(func() struct{} {
						fn(v, threadID)
						return struct{}{}
					})
					remaining.finishOne(err, cell)
				}
			}
			return future, &OverflowError[struct{}]{
				task:          task,
				future:        future,
				beginOffset:   i,
				numIterations: len(rest),
			}
		}
	}
	return future, nil
}

// splitRange partitions [begin, end) across numWorkers workers using
// the same deterministic truncated-division scheme the spec requires:
// worker i gets [begin + i*L/W, begin + (i+1)*L/W), a true partition of
// the whole range with no gaps or overlaps for any L, W.
func splitRange(begin, end, worker, numWorkers int) (lo, hi int) {
	length := end - begin
	lo = begin + worker*length/numWorkers
	hi = begin + (worker+1)*length/numWorkers
	return lo, hi
}
