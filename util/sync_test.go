package util

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSyncPoint(t *testing.T) {
	var calls, passed int32
	sp := NewSyncPoint(3, func() {
		if atomic.LoadInt32(&passed) != 0 {
			t.Error("worker passed before callback")
		}
		atomic.AddInt32(&calls, 1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp.Sync()
			atomic.AddInt32(&passed, 1)
		}()
	}
	wg.Wait()

	if calls != 1 || passed != 3 {
		t.Fatal(calls, passed)
	}

	// does not wait/block
	sp.Sync()
	if calls != 1 {
		t.Fatal(calls)
	}
}
