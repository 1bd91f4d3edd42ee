// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

const bitsetBlockBits = 64

// CountedBitset is a resizable bit array backed by 64-bit blocks,
// supporting single-bit test-and-set, ranged reset, and ranged
// population count. It is a standalone component: no other type in this
// package uses it ([ScalableCircularQueue] tracks its free slots with a
// free index ring instead).
//
// Invariant: len(blocks) == ceil(n/64), and every bit at index >= n
// inside the last block is always 0.
type CountedBitset struct {
	blocks []atomix.Uint64
	n      int
}

// NewCountedBitset creates a bitset of n bits, all initially clear.
func NewCountedBitset(n int) *CountedBitset {
	b := &CountedBitset{}
	b.SetLen(n)
	return b
}

// Len returns the logical number of bits.
func (b *CountedBitset) Len() int { return b.n }

// SetLen resizes the bitset to n bits, clearing all content. n may be 0.
func (b *CountedBitset) SetLen(n int) {
	if n < 0 {
		panic("concore: CountedBitset length must be >= 0")
	}
	nb := (n + bitsetBlockBits - 1) / bitsetBlockBits
	b.blocks = make([]atomix.Uint64, nb)
	b.n = n
}

func (b *CountedBitset) blockIndex(i int) (block int, bit uint) {
	return i / bitsetBlockBits, uint(i % bitsetBlockBits)
}

// TestAndSet atomically stores v at bit i and returns the bit's
// previous value.
func (b *CountedBitset) TestAndSet(i int, v bool) bool {
	if i < 0 || i >= b.n {
		panic("concore: CountedBitset index out of range")
	}
	blk, bit := b.blockIndex(i)
	mask := uint64(1) << bit
	sw := spin.Wait{}
	for {
		old := b.blocks[blk].LoadAcquire()
		var next uint64
		if v {
			next = old | mask
		} else {
			next = old &^ mask
		}
		if next == old || b.blocks[blk].CompareAndSwapAcqRel(old, next) {
			return old&mask != 0
		}
		sw.Once()
	}
}

// Reset sets every bit in the half-open range [begin, end) to v.
// Requires begin <= end <= Len().
func (b *CountedBitset) Reset(begin, end int, v bool) {
	b.requireRange(begin, end)
	if begin == end {
		return
	}
	b.forEachBlock(begin, end, func(blk int, mask uint64) {
		sw := spin.Wait{}
		for {
			old := b.blocks[blk].LoadAcquire()
			var next uint64
			if v {
				next = old | mask
			} else {
				next = old &^ mask
			}
			if next == old || b.blocks[blk].CompareAndSwapAcqRel(old, next) {
				return
			}
			sw.Once()
		}
	})
}

// Count returns the population count over the half-open range
// [begin, end). Requires begin <= end <= Len(). An empty range returns 0.
func (b *CountedBitset) Count(begin, end int) int {
	b.requireRange(begin, end)
	if begin == end {
		return 0
	}
	count := 0
	b.forEachBlock(begin, end, func(blk int, mask uint64) {
		count += PopCount(b.blocks[blk].LoadAcquire() & mask)
	})
	return count
}

// IsAny reports whether any bit in [begin, end) is set. An empty range
// reports false.
func (b *CountedBitset) IsAny(begin, end int) bool {
	b.requireRange(begin, end)
	if begin == end {
		return false
	}
	any := false
	b.forEachBlock(begin, end, func(blk int, mask uint64) {
		if b.blocks[blk].LoadAcquire()&mask != 0 {
			any = true
		}
	})
	return any
}

// IsAll reports whether every bit in [begin, end) is set. An empty
// range reports false, per convention.
func (b *CountedBitset) IsAll(begin, end int) bool {
	b.requireRange(begin, end)
	if begin == end {
		return false
	}
	all := true
	b.forEachBlock(begin, end, func(blk int, mask uint64) {
		if b.blocks[blk].LoadAcquire()&mask != mask {
			all = false
		}
	})
	return all
}

// IsNone reports whether no bit in [begin, end) is set. An empty range
// reports true, per convention.
func (b *CountedBitset) IsNone(begin, end int) bool {
	return !b.IsAny(begin, end)
}

func (b *CountedBitset) requireRange(begin, end int) {
	if begin < 0 || end < begin || end > b.n {
		panic("concore: CountedBitset range out of bounds")
	}
}

// forEachBlock partitions [begin, end) into a head mask on the first
// touched block, whole blocks in between, and a tail mask on the last
// touched block, invoking fn(blockIndex, mask) for each.
func (b *CountedBitset) forEachBlock(begin, end int, fn func(blk int, mask uint64)) {
	firstBlk, firstBit := b.blockIndex(begin)
	lastBlk, lastBit := b.blockIndex(end - 1)

	if firstBlk == lastBlk {
		mask := fullRangeMask(firstBit, lastBit)
		fn(firstBlk, mask)
		return
	}

	fn(firstBlk, fullRangeMask(firstBit, bitsetBlockBits-1))
	for blk := firstBlk + 1; blk < lastBlk; blk++ {
		fn(blk, ^uint64(0))
	}
	fn(lastBlk, fullRangeMask(0, lastBit))
}

// fullRangeMask returns a mask with bits [lo, hi] (inclusive) set.
func fullRangeMask(lo, hi uint) uint64 {
	width := hi - lo + 1
	var span uint64
	if width >= bitsetBlockBits {
		span = ^uint64(0)
	} else {
		span = (uint64(1) << width) - 1
	}
	return span << lo
}
