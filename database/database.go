// Package database opens triple sinks backed by a database.
package database

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/rdf"
)

type Config struct {
	ConnectionParams string
	// Table receives the triples. It can be qualified with a schema.
	Table string
}

// Sink is an rdf.Sink that needs to prepare its tables before the first
// write.
type Sink interface {
	rdf.Sink
	Init() error
}

var databases map[string]func(Config) (Sink, error)

func init() {
	databases = make(map[string]func(Config) (Sink, error))
}

func Register(name string, f func(Config) (Sink, error)) {
	databases[name] = f
}

// Open returns the sink registered for the scheme of the connection
// parameters.
func Open(conf Config) (Sink, error) {
	typ := ConnectionType(conf.ConnectionParams)
	newFunc, ok := databases[typ]
	if !ok {
		return nil, errors.Errorf("unsupported database type: %s", typ)
	}

	db, err := newFunc(conf)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func ConnectionType(param string) string {
	parts := strings.SplitN(param, ":", 2)
	return parts[0]
}

// NullSink discards all triples.
type NullSink struct{}

func (n *NullSink) Init() error              { return nil }
func (n *NullSink) Write([]rdf.Triple) error { return nil }
func (n *NullSink) Close() error             { return nil }

func NewNullSink(conf Config) (Sink, error) {
	return &NullSink{}, nil
}

func init() {
	Register("null", NewNullSink)
}
