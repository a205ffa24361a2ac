package writer

import (
	"github.com/smartdatalake/osmwrangle/rdf"
)

const defaultBatchSize = 1024

// tripleBuffer collects the triples of whole records and writes them to
// the sink once size records are buffered. It is owned by one worker.
type tripleBuffer struct {
	sink    rdf.Sink
	size    int
	records int
	triples []rdf.Triple
}

func newTripleBuffer(sink rdf.Sink, size int) *tripleBuffer {
	if size <= 0 {
		size = defaultBatchSize
	}
	return &tripleBuffer{sink: sink, size: size}
}

func (b *tripleBuffer) add(ts []rdf.Triple) error {
	b.triples = append(b.triples, ts...)
	b.records++
	if b.records >= b.size {
		return b.flush()
	}
	return nil
}

func (b *tripleBuffer) flush() error {
	if len(b.triples) == 0 {
		b.records = 0
		return nil
	}
	err := b.sink.Write(b.triples)
	b.triples = b.triples[:0]
	b.records = 0
	return err
}
