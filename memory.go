// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore

import (
	"fmt"
	"unsafe"
)

// MemoryResource is the pluggable allocator contract the thread manager
// accepts via [WithMemoryResource]. A generic queue's backing array
// holds arbitrary T, including pointer-containing types the garbage
// collector must be able to see; routing that array through a raw
// unsafe.Pointer-returning allocator would hide those pointers from the
// collector, so only GC-visible allocation ([DefaultMemoryResource],
// i.e. ordinary make()) backs queue storage in this package today. The
// interface is kept general for callers building their own
// pointer-free structures on top of it (see DESIGN.md).
type MemoryResource interface {
	// Allocate returns memory aligned to alignment (a power of two >= 1)
	// and at least size bytes, or an error.
	Allocate(size, alignment uintptr) (unsafe.Pointer, error)

	// Deallocate releases memory previously returned by Allocate with
	// the same size and alignment arguments.
	Deallocate(p unsafe.Pointer, size, alignment uintptr)

	// IsEqual reports whether other may deallocate memory this resource
	// allocated, and vice versa.
	IsEqual(other MemoryResource) bool
}

// DefaultMemoryResource is the zero-value [MemoryResource]: it backs
// allocation with ordinary Go slices and leaves deallocation to the
// garbage collector. Every constructor in this package that accepts an
// optional MemoryResource falls back to DefaultMemoryResource{} so
// callers only need to supply one when they want to plug in a custom
// allocator.
type DefaultMemoryResource struct{}

// Allocate returns a zeroed, GC-owned buffer of at least size bytes.
// It over-allocates by alignment bytes and returns the first address in
// the buffer that is a multiple of alignment, so any power-of-two
// alignment is honored. An alignment that is zero or not a power of two
// returns an error.
func (DefaultMemoryResource) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	if alignment == 0 || (alignment&(alignment-1)) != 0 {
		return nil, fmt.Errorf("concore: alignment %d is not a power of two", alignment)
	}
	buf := make([]byte, size+alignment)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	offset := (alignment - addr%alignment) % alignment
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(buf)), offset), nil
}

// Deallocate is a no-op: memory returned by Allocate is reclaimed by
// the garbage collector once unreferenced.
func (DefaultMemoryResource) Deallocate(p unsafe.Pointer, size, alignment uintptr) {}

// IsEqual reports whether other is also a DefaultMemoryResource.
func (DefaultMemoryResource) IsEqual(other MemoryResource) bool {
	_, ok := other.(DefaultMemoryResource)
	return ok
}
