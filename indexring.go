// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// indexBits is the width spec section 3.1's RingSlot gives the stored
// index: "A 64-bit value. The high half encodes a monotonically-growing
// cycle tag... the low half encodes the stored index." indexRing is
// that literal packed encoding; ring.go's ring[T] is the generalisation
// to an arbitrary payload T that [RingQueue] needs and that cannot be
// squeezed into half a machine word.
const indexBits = 32

const indexMask = uint64(1)<<indexBits - 1

func packIndexSlot(cycle uint64, index uint32) uint64 {
	return cycle<<indexBits | uint64(index)
}

func unpackIndexSlot(word uint64) (cycle uint64, index uint32) {
	return word >> indexBits, uint32(word & indexMask)
}

// indexRing is the free/allocated index ring [ScalableCircularQueue]
// composes: both of its rings only ever carry a slot index in
// [0, capacity), so they are built directly on the spec's packed
// RingSlot word rather than on ring.go's generic, separate-field slot.
// Packing forces every publish to be a single compare-and-swap of the
// combined (cycle, index) word — there is no room, as there is with
// ring[T]'s dedicated cycle field, to publish the payload with a plain
// store ordered by a later release-store of the cycle alone.
type indexRing struct {
	_         noCopy
	_         pad
	tail      atomix.Uint64
	_         pad
	head      atomix.Uint64
	_         pad
	threshold atomix.Int64
	_         pad
	draining  atomix.Bool
	_         pad
	slots     []atomix.Uint64
	capacity  uint64
	size      uint64
	mask      uint64
}

// newIndexRing constructs an indexRing of the given usable capacity,
// rounded up to the next power of two (minimum 1).
func newIndexRing(capacity int) *indexRing {
	if capacity < 1 {
		panic("concore: ring capacity must be >= 1")
	}
	n := uint64(roundToPow2(capacity))
	if n > uint64(1)<<indexBits {
		panic("concore: ring capacity exceeds the packed index ring's 32-bit index space")
	}
	size := n * 2

	r := &indexRing{
		slots:    make([]atomix.Uint64, size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	r.threshold.StoreRelaxed(3*int64(n) - 1)
	for i := uint64(0); i < size; i++ {
		r.slots[i].StoreRelaxed(packIndexSlot(i/n, 0))
	}
	return r
}

// enqueue publishes index to the ring. Returns [ErrWouldBlock] if the
// ring is saturated, leaving every slot untouched.
func (r *indexRing) enqueue(index uint32) error {
	sw := spin.Wait{}
	for {
		tail := r.tail.LoadAcquire()
		if tail >= r.head.LoadAcquire()+r.capacity {
			return ErrWouldBlock
		}

		myTail := r.tail.AddAcqRel(1) - 1
		slot := &r.slots[myTail&r.mask]
		wantCycle := myTail / r.capacity
		old := slot.LoadAcquire()
		cycle, _ := unpackIndexSlot(old)

		switch {
		case cycle == wantCycle:
			// myTail was claimed exclusively by this FAA; no other
			// writer can touch this word until the CAS below lands.
			if !slot.CompareAndSwapAcqRel(old, packIndexSlot(wantCycle+1, index)) {
				panic("concore: index ring invariant violated: lost race on an exclusively claimed slot")
			}
			r.threshold.StoreRelaxed(3*int64(r.capacity) - 1)
			return nil
		case int64(cycle) < int64(wantCycle):
			return ErrWouldBlock
		default:
			sw.Once()
		}
	}
}

// dequeue claims the next published index. Returns [ErrWouldBlock] if
// the ring is empty or conservatively appears empty under the
// threshold livelock guard while drain has not been signalled.
func (r *indexRing) dequeue() (uint32, error) {
	if !r.draining.LoadAcquire() && r.threshold.LoadRelaxed() < 0 {
		return 0, ErrWouldBlock
	}

	sw := spin.Wait{}
	for {
		myHead := r.head.AddAcqRel(1) - 1
		slot := &r.slots[myHead&r.mask]
		wantCycle := myHead/r.capacity + 1
		old := slot.LoadAcquire()
		cycle, index := unpackIndexSlot(old)

		switch {
		case cycle == wantCycle:
			nextEnqCycle := (myHead + r.size) / r.capacity
			if !slot.CompareAndSwapAcqRel(old, packIndexSlot(nextEnqCycle, 0)) {
				panic("concore: index ring invariant violated: lost race on an exclusively claimed slot")
			}
			return index, nil
		case int64(cycle) < int64(wantCycle):
			nextEnqCycle := (myHead + r.size) / r.capacity
			slot.CompareAndSwapAcqRel(old, packIndexSlot(nextEnqCycle, index))

			if tail := r.tail.LoadAcquire(); tail <= myHead+1 {
				r.advanceTailTo(myHead + 1)
				r.threshold.AddAcqRel(-1)
				return 0, ErrWouldBlock
			}
			if r.threshold.AddAcqRel(-1) <= 0 && !r.draining.LoadAcquire() {
				return 0, ErrWouldBlock
			}
			sw.Once()
		default:
			sw.Once()
		}
	}
}

// advanceTailTo repairs a stalled producer's gap by bumping tail
// forward to at least minHead, reloading both counters itself so
// concurrent callers never race over a caller-supplied snapshot.
func (r *indexRing) advanceTailTo(minHead uint64) {
	for {
		tail := r.tail.LoadRelaxed()
		if tail >= minHead {
			return
		}
		target := minHead
		if head := r.head.LoadRelaxed(); head > target {
			target = head
		}
		if r.tail.CompareAndSwapRelaxed(tail, target) {
			return
		}
	}
}

// drain signals that no further enqueues will occur.
func (r *indexRing) drain() {
	r.draining.StoreRelease(true)
}

func (r *indexRing) cap() int {
	return int(r.capacity)
}
