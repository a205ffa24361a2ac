package rdf

import (
	"bufio"
	"io"
	"sync"

	"github.com/cayleygraph/quad/nquads"
	"github.com/pkg/errors"
)

// NTriplesWriter writes triples as N-Triples lines. It is safe for
// concurrent use, the triples of one Write call are written contiguously.
type NTriplesWriter struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	w      *nquads.Writer
	closer io.Closer
	count  int64
}

// NewNTriplesWriter writes to w. w is closed with the writer if it is an
// io.Closer.
func NewNTriplesWriter(w io.Writer) *NTriplesWriter {
	buf := bufio.NewWriterSize(w, 64*1024)
	nw := &NTriplesWriter{buf: buf, w: nquads.NewWriter(buf)}
	if c, ok := w.(io.Closer); ok {
		nw.closer = c
	}
	return nw
}

func (nw *NTriplesWriter) Write(triples []Triple) error {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	for _, t := range triples {
		if err := nw.w.WriteQuad(t.Quad()); err != nil {
			return errors.Wrapf(err, "writing triple %s", t.Subject)
		}
		nw.count++
	}
	return nil
}

// Count returns the number of written triples.
func (nw *NTriplesWriter) Count() int64 {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	return nw.count
}

func (nw *NTriplesWriter) Close() error {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	if err := nw.w.Close(); err != nil {
		return err
	}
	if err := nw.buf.Flush(); err != nil {
		return err
	}
	if nw.closer != nil {
		return nw.closer.Close()
	}
	return nil
}
