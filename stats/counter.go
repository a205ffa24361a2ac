package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type ElementCount struct {
	Current int64
	Rps     float64
}

// RpsCounter counts elements and the rate since the last tick. Each Add is
// mirrored to the Prometheus counter, if set.
type RpsCounter struct {
	counter int64
	lastAdd int64

	mu       sync.Mutex
	lastTick time.Time
	rps      float64

	metric prometheus.Counter
}

func NewRpsCounter(metric prometheus.Counter) *RpsCounter {
	return &RpsCounter{metric: metric, lastTick: time.Now()}
}

func (r *RpsCounter) Add(n int) {
	if n <= 0 {
		return
	}
	atomic.AddInt64(&r.counter, int64(n))
	atomic.AddInt64(&r.lastAdd, int64(n))
	if r.metric != nil {
		r.metric.Add(float64(n))
	}
}

func (r *RpsCounter) Value() int64 {
	return atomic.LoadInt64(&r.counter)
}

// Rps returns the rate of the last tick interval.
func (r *RpsCounter) Rps() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rps
}

func (r *RpsCounter) Count() ElementCount {
	return ElementCount{Current: r.Value(), Rps: r.Rps()}
}

// Tick closes the current rate interval.
func (r *RpsCounter) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if dur := now.Sub(r.lastTick).Seconds(); dur > 0 {
		r.rps = float64(atomic.SwapInt64(&r.lastAdd, 0)) / dur
	}
	r.lastTick = now
}
