// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore_test

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/concore"
)

func TestDefaultMemoryResourceAllocateAligned(t *testing.T) {
	var r concore.DefaultMemoryResource
	for _, align := range []uintptr{1, 8, 16, 64} {
		p, err := r.Allocate(100, align)
		if err != nil {
			t.Fatalf("Allocate(100, %d): unexpected error %v", align, err)
		}
		if uintptr(p)%align != 0 {
			t.Fatalf("Allocate(100, %d): address %p is not aligned", align, p)
		}
		r.Deallocate(p, 100, align)
	}
}

func TestDefaultMemoryResourceRejectsNonPowerOfTwoAlignment(t *testing.T) {
	var r concore.DefaultMemoryResource
	if _, err := r.Allocate(16, 3); err == nil {
		t.Fatal("Allocate with alignment 3: got nil error, want error")
	}
}

func TestDefaultMemoryResourceIsEqual(t *testing.T) {
	var a, b concore.DefaultMemoryResource
	if !a.IsEqual(b) {
		t.Fatal("IsEqual between two DefaultMemoryResource values: got false, want true")
	}
}

type noopMemoryResource struct{}

func (noopMemoryResource) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	return nil, errUnsupported{}
}
func (noopMemoryResource) Deallocate(p unsafe.Pointer, size, alignment uintptr) {}
func (noopMemoryResource) IsEqual(other concore.MemoryResource) bool {
	_, ok := other.(noopMemoryResource)
	return ok
}

type errUnsupported struct{}

func (errUnsupported) Error() string { return "unsupported" }

func TestThreadManagerWithMemoryResource(t *testing.T) {
	mr := noopMemoryResource{}
	tm := concore.NewThreadManager(1, 4, concore.WithMemoryResource(mr))
	defer tm.Close()
	if !tm.Resource().IsEqual(mr) {
		t.Fatal("Resource(): got a different MemoryResource than was configured")
	}
}
