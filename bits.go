// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"math/bits"
	"unsafe"
)

// Unsigned is the set of unsigned integer widths the ring queues and
// [CountedBitset] need bit intrinsics over.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// PopCount returns the number of one bits in v.
func PopCount[T Unsigned](v T) int {
	switch any(v).(type) {
	case uint8:
		return bits.OnesCount8(uint8(v))
	case uint16:
		return bits.OnesCount16(uint16(v))
	case uint32:
		return bits.OnesCount32(uint32(v))
	default:
		return bits.OnesCount64(uint64(v))
	}
}

// LeadingZeros returns the number of leading zero bits in v, counting
// from the width of T.
func LeadingZeros[T Unsigned](v T) int {
	switch unsafe.Sizeof(v) {
	case 1:
		return bits.LeadingZeros8(uint8(v))
	case 2:
		return bits.LeadingZeros16(uint16(v))
	case 4:
		return bits.LeadingZeros32(uint32(v))
	default:
		return bits.LeadingZeros64(uint64(v))
	}
}

// TrailingZeros returns the number of trailing zero bits in v. It
// returns the width of T when v is zero.
func TrailingZeros[T Unsigned](v T) int {
	switch unsafe.Sizeof(v) {
	case 1:
		return bits.TrailingZeros8(uint8(v))
	case 2:
		return bits.TrailingZeros16(uint16(v))
	case 4:
		return bits.TrailingZeros32(uint32(v))
	default:
		return bits.TrailingZeros64(uint64(v))
	}
}

// BitWidth returns the minimum number of bits required to represent v;
// it returns 0 for v == 0.
func BitWidth[T Unsigned](v T) int {
	switch x := any(v).(type) {
	case uint8:
		return bits.Len8(x)
	case uint16:
		return bits.Len16(x)
	case uint32:
		return bits.Len32(x)
	default:
		return bits.Len64(uint64(v))
	}
}

// BitCeil returns the smallest power of two greater than or equal to v.
// BitCeil(0) returns 1.
func BitCeil[T Unsigned](v T) T {
	if v <= 1 {
		return 1
	}
	return T(1) << BitWidth(v-1)
}

// BitFloor returns the largest power of two less than or equal to v.
// BitFloor(0) returns 0.
func BitFloor[T Unsigned](v T) T {
	if v == 0 {
		return 0
	}
	return T(1) << (BitWidth(v) - 1)
}

// RotateLeft rotates v left by k bits within the width of T.
func RotateLeft[T Unsigned](v T, k int) T {
	switch unsafe.Sizeof(v) {
	case 1:
		return T(bits.RotateLeft8(uint8(v), k))
	case 2:
		return T(bits.RotateLeft16(uint16(v), k))
	case 4:
		return T(bits.RotateLeft32(uint32(v), k))
	default:
		return T(bits.RotateLeft64(uint64(v), k))
	}
}

// RotateRight rotates v right by k bits within the width of T.
func RotateRight[T Unsigned](v T, k int) T {
	return RotateLeft(v, -k)
}

// roundToPow2 rounds n up to the next power of 2 (roundToPow2(1) == 1).
// This generalizes the teacher package's roundToPow2 via [BitCeil].
func roundToPow2(n int) int {
	if n < 1 {
		return 1
	}
	return int(BitCeil(uint64(n)))
}
