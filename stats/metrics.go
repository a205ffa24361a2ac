package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all metrics of the process. It is served by
// StartHttpPProf.
var Registry = prometheus.NewRegistry()

var (
	elementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osmwrangle",
		Name:      "elements_total",
		Help:      "Number of parsed OSM elements by type.",
	}, []string{"type"})

	recordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osmwrangle",
		Name:      "records_total",
		Help:      "Number of records by status.",
	}, []string{"status"})

	triplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "osmwrangle",
		Name:      "triples_total",
		Help:      "Number of written triples.",
	})
)

func init() {
	Registry.MustRegister(
		elementsTotal,
		recordsTotal,
		triplesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
