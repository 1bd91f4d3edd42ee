// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore_test

import (
	"sort"
	"sync"
	"testing"

	"code.hybscloud.com/concore"
)

func TestRingQueueBasic(t *testing.T) {
	q := concore.NewRingQueue[int](8)
	if q.Cap() != 8 {
		t.Fatalf("Cap: got %d, want 8", q.Cap())
	}
	for i := 0; i < 8; i++ {
		if err := q.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): unexpected error %v", i, err)
		}
	}
	if err := q.Enqueue(99); !concore.IsWouldBlock(err) {
		t.Fatalf("Enqueue on full queue: got %v, want ErrWouldBlock", err)
	}
	for i := 0; i < 8; i++ {
		v, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: unexpected error %v", err)
		}
		if v != i {
			t.Fatalf("Dequeue order: got %d, want %d", v, i)
		}
	}
	if _, err := q.Dequeue(); !concore.IsWouldBlock(err) {
		t.Fatalf("Dequeue on empty queue: got %v, want ErrWouldBlock", err)
	}
}

func TestRingQueueRoundsCapacityUpToPowerOfTwo(t *testing.T) {
	q := concore.NewRingQueue[int](5)
	if q.Cap() != 8 {
		t.Fatalf("Cap: got %d, want 8", q.Cap())
	}
}

// TestRingQueueCapacityOneAlternates exercises the single-slot boundary
// case: with usable capacity 1, enqueue and dequeue must strictly
// alternate without ever deadlocking against the doubled physical slot
// count the SCQ algorithm requires.
func TestRingQueueCapacityOneAlternates(t *testing.T) {
	q := concore.NewRingQueue[int](1)
	if q.Cap() != 1 {
		t.Fatalf("Cap: got %d, want 1", q.Cap())
	}
	for i := 0; i < 100; i++ {
		if err := q.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): unexpected error %v", i, err)
		}
		if err := q.Enqueue(i + 1); !concore.IsWouldBlock(err) {
			t.Fatalf("Enqueue while full: got %v, want ErrWouldBlock", err)
		}
		v, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: unexpected error %v", err)
		}
		if v != i {
			t.Fatalf("Dequeue: got %d, want %d", v, i)
		}
	}
}

func TestRingQueueDrainAllowsFullDequeueAfterLastEnqueue(t *testing.T) {
	q := concore.NewRingQueue[int](4)
	for i := 0; i < 4; i++ {
		_ = q.Enqueue(i)
	}
	q.Drain()
	for i := 0; i < 4; i++ {
		v, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue after Drain: unexpected error %v", err)
		}
		if v != i {
			t.Fatalf("Dequeue after Drain: got %d, want %d", v, i)
		}
	}
}

func TestRingQueueConcurrentProducersConsumers(t *testing.T) {
	const (
		producers = 4
		perProd   = 2000
		total     = producers * perProd
	)
	q := concore.NewRingQueue[int](256)

	var produced sync.WaitGroup
	produced.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer produced.Done()
			for i := 0; i < perProd; i++ {
				v := p*perProd + i
				for {
					if err := q.Enqueue(v); err == nil {
						break
					}
				}
			}
		}(p)
	}

	consumed := make([]int, 0, total)
	var mu sync.Mutex
	var consumers sync.WaitGroup
	done := make(chan struct{})
	consumers.Add(4)
	for c := 0; c < 4; c++ {
		go func() {
			defer consumers.Done()
			for {
				v, err := q.Dequeue()
				if err == nil {
					mu.Lock()
					consumed = append(consumed, v)
					mu.Unlock()
					continue
				}
				select {
				case <-done:
					return
				default:
				}
			}
		}()
	}

	produced.Wait()
	for len(consumed) < total {
		mu.Lock()
		n := len(consumed)
		mu.Unlock()
		if n >= total {
			break
		}
	}
	close(done)
	consumers.Wait()

	sort.Ints(consumed)
	if len(consumed) != total {
		t.Fatalf("consumed count: got %d, want %d", len(consumed), total)
	}
	for i, v := range consumed {
		if v != i {
			t.Fatalf("consumed value at %d: got %d, want %d (duplicate or lost item)", i, v, i)
		}
	}
}
