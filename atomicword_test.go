// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concore_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/concore"
)

func TestAtomicWordLoadStore(t *testing.T) {
	var w concore.AtomicWord
	if got := w.Load(concore.OrderAcquire); got != 0 {
		t.Fatalf("zero-value Load: got %d, want 0", got)
	}
	w.Store(7, concore.OrderRelease)
	if got := w.Load(concore.OrderAcquire); got != 7 {
		t.Fatalf("Load after Store: got %d, want 7", got)
	}
}

func TestAtomicWordWaitWakesOnNotify(t *testing.T) {
	var w concore.AtomicWord
	done := make(chan struct{})
	go func() {
		w.Wait(0, concore.OrderAcquire)
		close(done)
	}()

	// Give the waiter a chance to block before waking it.
	time.Sleep(10 * time.Millisecond)
	w.Store(1, concore.OrderRelease)
	w.NotifyAll()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after NotifyAll")
	}
}

func TestAtomicWordWaitReturnsImmediatelyOnStaleOld(t *testing.T) {
	var w concore.AtomicWord
	w.Store(5, concore.OrderRelease)

	done := make(chan struct{})
	go func() {
		w.Wait(0, concore.OrderAcquire) // old already != current value
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait blocked despite a stale old value")
	}
}

func TestAtomicWordNoLostWakeUnderConcurrency(t *testing.T) {
	const waiters = 16
	var w concore.AtomicWord
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			for {
				v := w.Load(concore.OrderAcquire)
				if v != 0 {
					return
				}
				w.Wait(v, concore.OrderAcquire)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	w.Store(1, concore.OrderRelease)
	w.NotifyAll()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("not every waiter woke up: lost wake-up detected")
	}
}
