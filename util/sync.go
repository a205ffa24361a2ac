package util

import (
	"sync"
	"sync/atomic"
)

// SyncPoint blocks n workers until all of them reached it, then runs
// callback once. Later calls to Sync return immediately.
type SyncPoint struct {
	synced     atomic.Bool
	wg         sync.WaitGroup
	once       sync.Once
	callbackWg sync.WaitGroup
	callback   func()
}

func NewSyncPoint(n int, callback func()) *SyncPoint {
	s := &SyncPoint{callback: callback}
	s.wg.Add(n)
	s.callbackWg.Add(1)
	return s
}

func (s *SyncPoint) Sync() {
	if s.synced.Load() {
		return
	}
	s.wg.Done()
	s.wg.Wait()
	s.once.Do(s.call)
	s.callbackWg.Wait()
}

func (s *SyncPoint) call() {
	if s.callback != nil {
		s.callback()
	}
	s.synced.Store(true)
	s.callbackWg.Done()
}
