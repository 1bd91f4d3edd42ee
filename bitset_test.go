// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/concore"
)

func TestCountedBitsetTestAndSet(t *testing.T) {
	b := concore.NewCountedBitset(130)
	if b.Len() != 130 {
		t.Fatalf("Len: got %d, want 130", b.Len())
	}
	if got := b.TestAndSet(65, true); got != false {
		t.Fatalf("TestAndSet(65,true) previous: got %v, want false", got)
	}
	if got := b.TestAndSet(65, true); got != true {
		t.Fatalf("TestAndSet(65,true) previous: got %v, want true", got)
	}
	if got := b.TestAndSet(65, false); got != true {
		t.Fatalf("TestAndSet(65,false) previous: got %v, want true", got)
	}
}

func TestCountedBitsetRangedOps(t *testing.T) {
	b := concore.NewCountedBitset(200)
	b.Reset(10, 150, true)

	if got, want := b.Count(0, 200), 140; got != want {
		t.Fatalf("Count: got %d, want %d", got, want)
	}
	if !b.IsAll(10, 150) {
		t.Fatalf("IsAll(10,150): got false, want true")
	}
	if !b.IsNone(0, 10) {
		t.Fatalf("IsNone(0,10): got false, want true")
	}
	if !b.IsAny(10, 150) {
		t.Fatalf("IsAny(10,150): got false, want true")
	}
	if b.IsAny(150, 200) {
		t.Fatalf("IsAny(150,200): got true, want false")
	}

	b.Reset(10, 150, false)
	if got, want := b.Count(0, 200), 0; got != want {
		t.Fatalf("Count after clear: got %d, want %d", got, want)
	}
}

func TestCountedBitsetEmptyRangeConventions(t *testing.T) {
	b := concore.NewCountedBitset(64)
	if b.IsAny(5, 5) {
		t.Fatalf("IsAny on empty range: got true, want false")
	}
	if b.IsAll(5, 5) {
		t.Fatalf("IsAll on empty range: got true, want false")
	}
	if !b.IsNone(5, 5) {
		t.Fatalf("IsNone on empty range: got false, want true")
	}
	if got := b.Count(5, 5); got != 0 {
		t.Fatalf("Count on empty range: got %d, want 0", got)
	}
}

func TestCountedBitsetSetLenResets(t *testing.T) {
	b := concore.NewCountedBitset(64)
	b.Reset(0, 64, true)
	b.SetLen(128)
	if b.Len() != 128 {
		t.Fatalf("Len after SetLen: got %d, want 128", b.Len())
	}
	if got := b.Count(0, 128); got != 0 {
		t.Fatalf("Count after SetLen: got %d, want 0", got)
	}
}

func TestCountedBitsetConcurrentTestAndSet(t *testing.T) {
	n := 4096
	if concore.RaceEnabled {
		// Keep the per-bit CAS traffic from making this test the long
		// pole of a -race run.
		n = 512
	}
	b := concore.NewCountedBitset(n)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := g; i < n; i += 8 {
				b.TestAndSet(i, true)
			}
		}(g)
	}
	wg.Wait()
	if got := b.Count(0, n); got != n {
		t.Fatalf("Count after concurrent set: got %d, want %d", got, n)
	}
}
