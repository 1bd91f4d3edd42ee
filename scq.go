// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

// ScalableCircularQueue is a bounded MPMC queue composed of two index
// rings over a shared storage array: freeRing holds the indices of
// uninitialised slots, allocRing holds the indices of populated slots.
// Enqueue claims a free index, writes the value, and publishes the
// index to allocRing; dequeue claims an allocated index, moves the
// value out, and returns the index to freeRing.
//
// This is the two-ring composition the spec describes (section 3.1,
// 4.4) rather than the single fused cycle-tagged ring the sibling
// [code.hybscloud.com/lfq] package's MPMC[T] uses as a shortcut for the
// same algorithm family — grounded on the original C++
// zisc::ScalableCircularQueue's free_ring/alloc_ring split. Each stored
// value is owned by exactly one ring at a time; the transition between
// them is linearisable because each ring's enqueue/dequeue already is.
//
// Both rings are indexRing (indexring.go), the packed-word specialisation
// of the ring engine: every slot they ever hold is a uint32 index, not
// an arbitrary payload, so there is no reason to pay ring[T]'s
// separate-cycle-field layout here.
type ScalableCircularQueue[T any] struct {
	freeRing  *indexRing
	allocRing *indexRing
	storage   []T
	capacity  int
}

// NewScalableCircularQueue creates a queue of the given capacity,
// rounded up to the next power of two (minimum 1). freeRing starts
// full (every index 0..capacity-1 available), allocRing starts empty.
func NewScalableCircularQueue[T any](capacity int) *ScalableCircularQueue[T] {
	q := &ScalableCircularQueue[T]{}
	q.initCapacity(capacity)
	return q
}

func (q *ScalableCircularQueue[T]) initCapacity(capacity int) {
	n := roundToPow2(capacity)
	q.freeRing = newIndexRing(n)
	q.allocRing = newIndexRing(n)
	q.storage = make([]T, n)
	q.capacity = n
	for i := 0; i < n; i++ {
		// Cannot fail: a brand new ring of capacity n accepts exactly n
		// sequential enqueues before reporting overflow.
		_ = q.freeRing.enqueue(uint32(i))
	}
}

// Enqueue claims a free slot, stores value, and publishes the slot to
// the allocated ring. It returns the claimed slot's stable index, or
// [ErrWouldBlock] if the queue is full, in which case no state changes.
func (q *ScalableCircularQueue[T]) Enqueue(value T) (int, error) {
	idx, err := q.freeRing.dequeue()
	if err != nil {
		return 0, ErrWouldBlock
	}
	q.storage[idx] = value
	if err := q.allocRing.enqueue(idx); err != nil {
		// Unreachable under correct bookkeeping: claiming a free index
		// always leaves room in allocRing for it.
		panic("concore: scalable circular queue invariant violated: alloc ring rejected a freshly claimed slot")
	}
	return int(idx), nil
}

// Dequeue claims the oldest populated slot, moves its value out, and
// returns the slot to the free ring. Returns (zero-value,
// [ErrWouldBlock]) if the queue is empty.
func (q *ScalableCircularQueue[T]) Dequeue() (T, error) {
	var zero T
	idx, err := q.allocRing.dequeue()
	if err != nil {
		return zero, ErrWouldBlock
	}
	value := q.storage[idx]
	q.storage[idx] = zero
	if err := q.freeRing.enqueue(idx); err != nil {
		panic("concore: scalable circular queue invariant violated: free ring rejected a freshly released slot")
	}
	return value, nil
}

// Cap returns the queue's usable capacity.
func (q *ScalableCircularQueue[T]) Cap() int { return q.capacity }

// SetCapacity resizes the queue, clearing all content and refilling the
// free ring. It is only legal to call while the queue is empty — per
// the spec's precondition-violation policy, misuse leaves state
// unspecified rather than corrupting memory, since this simply
// replaces both rings and the storage array wholesale.
func (q *ScalableCircularQueue[T]) SetCapacity(capacity int) {
	q.initCapacity(capacity)
}

// Drain signals that no further enqueues will occur, letting Dequeue
// skip the allocated ring's threshold livelock guard so consumers can
// fully drain the queue.
func (q *ScalableCircularQueue[T]) Drain() {
	q.allocRing.drain()
}
