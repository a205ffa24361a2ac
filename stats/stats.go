// Package stats reports the progress of a run on the terminal and as
// Prometheus metrics.
package stats

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Statistics counts the elements and records of a run. All Add methods are
// safe for concurrent use.
type Statistics struct {
	Nodes     *RpsCounter
	Ways      *RpsCounter
	Relations *RpsCounter
	Records   *RpsCounter
	Rejected  *RpsCounter
	Deferred  *RpsCounter
	Retried   *RpsCounter
	Triples   *RpsCounter

	out      io.Writer
	messages chan string
	done     chan struct{}
	stopped  chan struct{}
}

func (s *Statistics) AddNodes(n int)     { s.Nodes.Add(n) }
func (s *Statistics) AddWays(n int)      { s.Ways.Add(n) }
func (s *Statistics) AddRelations(n int) { s.Relations.Add(n) }
func (s *Statistics) AddRecords(n int)   { s.Records.Add(n) }
func (s *Statistics) AddRejected(n int)  { s.Rejected.Add(n) }
func (s *Statistics) AddDeferred(n int)  { s.Deferred.Add(n) }
func (s *Statistics) AddRetried(n int)   { s.Retried.Add(n) }
func (s *Statistics) AddTriples(n int)   { s.Triples.Add(n) }

// Message prints msg below the current progress line.
func (s *Statistics) Message(msg string) {
	if s.messages == nil {
		return
	}
	s.messages <- msg
}

func newStatistics() *Statistics {
	return &Statistics{
		Nodes:     NewRpsCounter(elementsTotal.WithLabelValues("node")),
		Ways:      NewRpsCounter(elementsTotal.WithLabelValues("way")),
		Relations: NewRpsCounter(elementsTotal.WithLabelValues("relation")),
		Records:   NewRpsCounter(recordsTotal.WithLabelValues("accepted")),
		Rejected:  NewRpsCounter(recordsTotal.WithLabelValues("rejected")),
		Deferred:  NewRpsCounter(recordsTotal.WithLabelValues("deferred")),
		Retried:   NewRpsCounter(recordsTotal.WithLabelValues("retried")),
		Triples:   NewRpsCounter(triplesTotal),
	}
}

// NewStatistics returns statistics without terminal output.
func NewStatistics() *Statistics {
	return newStatistics()
}

// StatsReporter returns statistics that print the progress to stdout every
// second until Stop is called.
func StatsReporter() *Statistics {
	return startReporter(os.Stdout)
}

func startReporter(out io.Writer) *Statistics {
	s := newStatistics()
	s.out = out
	s.messages = make(chan string)
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go func() {
		defer close(s.stopped)
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case msg := <-s.messages:
				s.print()
				fmt.Fprintln(s.out, "\n", msg)
			case <-tick.C:
				s.print()
			case <-s.done:
				s.print()
				fmt.Fprintln(s.out)
				return
			}
		}
	}()
	return s
}

// Stop ends the progress output.
func (s *Statistics) Stop() {
	if s.done == nil {
		return
	}
	close(s.done)
	<-s.stopped
	s.done = nil
	s.messages = nil
}

func (s *Statistics) print() {
	for _, c := range []*RpsCounter{s.Nodes, s.Ways, s.Relations, s.Records} {
		c.Tick()
	}
	fmt.Fprintf(s.out, "Nodes: %7d/s (%10d) Ways: %7d/s (%9d) Relations: %6d/s (%8d) Records: %7d/s (%9d) Rejected: %8d",
		int64(s.Nodes.Rps()/100)*100,
		s.Nodes.Value(),
		int64(s.Ways.Rps()/100)*100,
		s.Ways.Value(),
		int64(s.Relations.Rps()/10)*10,
		s.Relations.Value(),
		int64(s.Records.Rps()/100)*100,
		s.Records.Value(),
		s.Rejected.Value(),
	)
	if val := os.Getenv("GOGCTRACE"); val != "" {
		fmt.Fprint(s.out, "\n")
	} else {
		fmt.Fprint(s.out, "\r\b")
	}
}

// Summary is the end-of-run result.
type Summary struct {
	Nodes, Ways, Relations int64
	Records, Rejected      int64
	Deferred, Retried      int64
	Triples                int64
}

func (s *Statistics) Summary() Summary {
	return Summary{
		Nodes:     s.Nodes.Value(),
		Ways:      s.Ways.Value(),
		Relations: s.Relations.Value(),
		Records:   s.Records.Value(),
		Rejected:  s.Rejected.Value(),
		Deferred:  s.Deferred.Value(),
		Retried:   s.Retried.Value(),
		Triples:   s.Triples.Value(),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%d nodes, %d ways, %d relations parsed; %d records transformed, %d rejected; "+
		"%d relations deferred, %d retried; %d triples",
		s.Nodes, s.Ways, s.Relations, s.Records, s.Rejected, s.Deferred, s.Retried, s.Triples)
}
