// Package writer transforms records to triples with a pool of workers.
package writer

import (
	"runtime"
	"sync"

	"github.com/smartdatalake/osmwrangle/classification"
	"github.com/smartdatalake/osmwrangle/element"
	"github.com/smartdatalake/osmwrangle/geom"
	"github.com/smartdatalake/osmwrangle/log"
	"github.com/smartdatalake/osmwrangle/rdf"
	"github.com/smartdatalake/osmwrangle/stats"
	"github.com/smartdatalake/osmwrangle/transform"
)

type Options struct {
	// Workers defaults to the number of CPUs.
	Workers int
	// BatchSize is the number of records each worker buffers before it
	// writes to the sink.
	BatchSize int
	// Extent drops all records outside, if set.
	Extent *Extent
	// CSV receives all accepted records, if set.
	CSV *CSVWriter
}

// RecordWriter consumes records and writes their triples to a sink. The
// triples of one record are always written with a single Write call.
type RecordWriter struct {
	opts      Options
	gen       *transform.Generator
	hierarchy *classification.Hierarchy
	sink      rdf.Sink
	progress  *stats.Statistics
	records   chan *element.Record
	wg        sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewRecordWriter returns a writer for all records from the records
// channel. h can be nil.
func NewRecordWriter(
	records chan *element.Record,
	gen *transform.Generator,
	h *classification.Hierarchy,
	sink rdf.Sink,
	progress *stats.Statistics,
	opts Options,
) *RecordWriter {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if progress == nil {
		progress = stats.NewStatistics()
	}
	return &RecordWriter{
		opts:      opts,
		gen:       gen,
		hierarchy: h,
		sink:      sink,
		progress:  progress,
		records:   records,
	}
}

// WriteCategories writes the triples of all categories of the
// classification.
func (w *RecordWriter) WriteCategories() error {
	if w.hierarchy == nil {
		return nil
	}
	ts := w.gen.CategoryTriples(w.hierarchy)
	w.progress.AddTriples(len(ts))
	return w.sink.Write(ts)
}

func (w *RecordWriter) Start() {
	for i := 0; i < w.opts.Workers; i++ {
		w.wg.Add(1)
		go w.loop()
	}
}

// Wait blocks until the records channel is closed and all records are
// written. It returns the first write error.
func (w *RecordWriter) Wait() error {
	w.wg.Wait()
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *RecordWriter) setErr(err error) {
	w.mu.Lock()
	if w.err == nil {
		w.err = err
		log.Println("[error] writing triples:", err)
	}
	w.mu.Unlock()
}

// accept checks the record before the transformation.
func (w *RecordWriter) accept(rec *element.Record) bool {
	switch {
	case rec.Geometry == nil || geom.IsEmpty(rec.Geometry):
		log.Printf("[debug] %s has no geometry", rec.ID)
		return false
	case rec.Category == "":
		return false
	case w.opts.Extent != nil && !w.opts.Extent.Contains(rec.Geometry):
		return false
	}
	return true
}

func (w *RecordWriter) loop() {
	defer w.wg.Done()
	buf := newTripleBuffer(w.sink, w.opts.BatchSize)

	for rec := range w.records {
		if !w.accept(rec) {
			w.progress.AddRejected(1)
			continue
		}
		_, ts, err := w.gen.Transform(rec, w.hierarchy)
		if err != nil {
			log.Printf("[warn] %s: %s", rec.ID, err)
			w.progress.AddRejected(1)
			continue
		}
		if err := buf.add(ts); err != nil {
			w.setErr(err)
		}
		if w.opts.CSV != nil {
			if err := w.opts.CSV.Write(rec); err != nil {
				w.setErr(err)
			}
		}
		w.progress.AddRecords(1)
		w.progress.AddTriples(len(ts))
	}
	if err := buf.flush(); err != nil {
		w.setErr(err)
	}
}
