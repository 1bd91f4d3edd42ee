// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package concore provides the lock-free and wait-free concurrency
// primitives a multi-producer / multi-consumer runtime is built on:
//
//   - [RingQueue]: a bounded MPMC ring queue backed by three monotone
//     64-bit counters (head, tail, threshold) and cycle-tagged slots.
//   - [ScalableCircularQueue]: a bounded MPMC queue composed of two
//     index rings (free and allocated) over a shared storage array.
//   - [ThreadManager]: a fixed-size worker pool with typed [Future]
//     results, parallel-for fan-out, and a catchable overflow error
//     that carries the rejected task back to the caller.
//   - [AtomicWord]: the 32-bit wait/notify cell the thread manager's
//     idle workers and its futures block on; futex-backed on Linux,
//     condition variable elsewhere.
//   - [CountedBitset]: a resizable bit array with single-bit
//     test-and-set, ranged reset and ranged population count, provided
//     as a standalone component.
//
// # Quick start
//
//	q := concore.NewScalableCircularQueue[int](1024)
//	id, err := q.Enqueue(42)
//	if concore.IsWouldBlock(err) {
//	    // queue is full — handle backpressure
//	}
//	v, err := q.Dequeue()
//
//	tm := concore.NewThreadManagerDefault()
//	defer tm.Close()
//	fut, err := concore.EnqueueFunc(tm, func() int { return 42 }, false)
//	var overflow *concore.OverflowError[int]
//	if errors.As(err, &overflow) {
//	    overflow.Task()(concore.UnmanagedThreadID)
//	    fut = overflow.GetFuture()
//	}
//	result, err := fut.Get()
//
// # Bounded, not persistent
//
// Every queue has a fixed, power-of-two-rounded capacity fixed at
// (re)configuration time. Nothing in this package survives process
// exit, and the thread manager is not a work-stealing runtime: tasks
// are claimed by whichever worker is idle, in arrival order, never
// stolen from another worker's private queue.
//
// # Memory resources
//
// [NewThreadManager] accepts an optional [MemoryResource] via
// [WithMemoryResource], retrievable with [ThreadManager.Resource]. It
// exists so callers building their own pointer-free structures on top
// of this package (for example an arena of fixed-size byte records)
// have a shared allocator contract to plug into; see
// [DefaultMemoryResource].
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomics with
// explicit memory ordering, [code.hybscloud.com/spin] for CPU pause
// instructions during CAS retry, and [code.hybscloud.com/iox] for
// semantic, non-failure control-flow errors — the same stack the
// sibling [code.hybscloud.com/lfq] queue package is built on. The
// futex-backed [AtomicWord] variant additionally uses
// golang.org/x/sys/unix on Linux.
package concore
