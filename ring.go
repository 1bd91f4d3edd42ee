// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// ring is the FAA-based MPMC engine behind [RingQueue]. It is the
// teacher package's MPMC[T] (itself Nikolaev's SCQ algorithm, DISC 2019)
// generalized under the names the spec uses for the same three counters:
// tail (next producer sequence), head (next consumer sequence), and
// threshold (consumer-side low-watermark livelock guard).
//
// ring keeps the cycle tag in its own atomic field next to an arbitrary
// payload T, publishing a value with a plain store ordered by a later
// release-store of the cycle alone — that costs two writes but supports
// any T. [ScalableCircularQueue]'s two index rings only ever carry a
// uint32 slot index, small enough to share a machine word with the
// cycle tag, so they use the packed single-CAS indexRing engine in
// indexring.go instead; see that file's comment for the tradeoff.
//
// Physical slot count is 2*capacity (SCQ requires double-width cycle
// separation between producer and consumer generations); each slot
// holds a monotone cycle tag plus the stored value.
type ring[T any] struct {
	_         noCopy
	_         pad
	tail      atomix.Uint64 // next producer sequence (FAA)
	_         pad
	head      atomix.Uint64 // next consumer sequence (FAA)
	_         pad
	threshold atomix.Int64 // livelock guard; negative means "observed empty"
	_         pad
	draining  atomix.Bool // Drain(): skip the threshold check
	_         pad
	buffer    []ringSlot[T]
	capacity  uint64 // n, usable capacity
	size      uint64 // 2n, physical slot count
	mask      uint64 // 2n - 1
}

type ringSlot[T any] struct {
	cycle atomix.Uint64 // generation this slot belongs to
	data  T
	_     padShort
}

// newRing constructs a ring of the given usable capacity, rounded up to
// the next power of two (minimum 1, per the spec's "queue of size 0 is
// not a supported input" boundary rule).
func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		panic("concore: ring capacity must be >= 1")
	}
	n := uint64(roundToPow2(capacity))
	size := n * 2

	r := &ring[T]{
		buffer:   make([]ringSlot[T], size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	r.threshold.StoreRelaxed(3*int64(n) - 1)
	for i := uint64(0); i < size; i++ {
		r.buffer[i].cycle.StoreRelaxed(i / n)
	}
	return r
}

// seqSlot returns the physical slot a logical sequence number maps to,
// together with the cycle a producer targeting that sequence publishes.
func (r *ring[T]) seqSlot(seq uint64) (slot *ringSlot[T], producerCycle uint64) {
	return &r.buffer[seq&r.mask], seq / r.capacity
}

// enqueue publishes value to the ring. It returns [ErrWouldBlock] if the
// ring is saturated (tail has lapped head by the full capacity),
// without modifying any state — the spec's overflow-is-side-effect-free
// guarantee.
func (r *ring[T]) enqueue(value T) error {
	sw := spin.Wait{}
	for {
		tail := r.tail.LoadAcquire()
		if tail >= r.head.LoadAcquire()+r.capacity {
			return ErrWouldBlock
		}

		myTail := r.tail.AddAcqRel(1) - 1
		slot, wantCycle := r.seqSlot(myTail)
		diff := int64(slot.cycle.LoadAcquire()) - int64(wantCycle)

		switch {
		case diff == 0:
			slot.data = value
			slot.cycle.StoreRelease(wantCycle + 1)
			r.threshold.StoreRelaxed(3*int64(r.capacity) - 1)
			return nil
		case diff < 0:
			return ErrWouldBlock
		default:
			sw.Once()
		}
	}
}

// dequeue claims the next published value. It returns [ErrWouldBlock]
// if the ring is empty, or conservatively appears empty under the
// threshold livelock guard while Drain has not been called.
func (r *ring[T]) dequeue() (T, error) {
	var zero T
	if !r.draining.LoadAcquire() && r.threshold.LoadRelaxed() < 0 {
		return zero, ErrWouldBlock
	}

	sw := spin.Wait{}
	for {
		myHead := r.head.AddAcqRel(1) - 1
		slot, producerCycle := r.seqSlot(myHead)
		wantCycle := producerCycle + 1
		slotCycle := slot.cycle.LoadAcquire()
		diff := int64(slotCycle) - int64(wantCycle)

		switch {
		case diff == 0:
			elem := slot.data
			slot.data = zero
			slot.cycle.StoreRelease((myHead + r.size) / r.capacity)
			return elem, nil
		case diff < 0:
			nextEnqCycle := (myHead + r.size) / r.capacity
			slot.cycle.CompareAndSwapAcqRel(slotCycle, nextEnqCycle)

			if tail := r.tail.LoadAcquire(); tail <= myHead+1 {
				r.advanceTailTo(myHead + 1)
				r.threshold.AddAcqRel(-1)
				return zero, ErrWouldBlock
			}
			if r.threshold.AddAcqRel(-1) <= 0 && !r.draining.LoadAcquire() {
				return zero, ErrWouldBlock
			}
			sw.Once()
		default:
			sw.Once()
		}
	}
}

// advanceTailTo repairs a stalled producer's gap by bumping tail
// forward to at least minHead. It reloads both counters itself on every
// attempt rather than trusting a caller-supplied snapshot, since other
// consumers may be advancing head concurrently.
func (r *ring[T]) advanceTailTo(minHead uint64) {
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

// drain signals that no further enqueues will occur, letting dequeue
// skip the threshold livelock guard so consumers can fully drain the
// ring. It is a hint: the caller must ensure no further enqueue happens.
func (r *ring[T]) drain() {
	r.draining.StoreRelease(true)
}

func (r *ring[T]) cap() int {
	return int(r.capacity)
}

// RingQueue is the bounded portable ring queue from spec section 4.3,
// exposed standalone: an MPMC queue over three monotone 64-bit counters
// and a cell array of cycle-tagged slots. It is "portable" in the sense
// the spec means — no OS-specific wait/notify is involved in its
// progress, only CAS/FAA retries backed by [code.hybscloud.com/spin].
type RingQueue[T any] struct {
	r *ring[T]
}

// NewRingQueue creates a ring queue of the given capacity, rounded up
// to the next power of two. Panics if capacity < 1.
func NewRingQueue[T any](capacity int) *RingQueue[T] {
	return &RingQueue[T]{r: newRing[T](capacity)}
}

// Enqueue adds value to the queue. Returns [ErrWouldBlock] if full.
func (q *RingQueue[T]) Enqueue(value T) error { return q.r.enqueue(value) }

// Dequeue removes and returns the oldest queued value. Returns
// (zero-value, [ErrWouldBlock]) if empty.
func (q *RingQueue[T]) Dequeue() (T, error) { return q.r.dequeue() }

// Drain signals that no more enqueues will occur, allowing Dequeue to
// skip the threshold livelock guard and drain every remaining item.
func (q *RingQueue[T]) Drain() { q.r.drain() }

// Cap returns the queue's usable capacity.
func (q *RingQueue[T]) Cap() int { return q.r.cap() }
