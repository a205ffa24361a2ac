package rdf

// MultiSink writes all triples to each of its sinks in order.
type MultiSink []Sink

func (m MultiSink) Write(triples []Triple) error {
	for _, s := range m {
		if err := s.Write(triples); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all sinks and returns the first error.
func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
