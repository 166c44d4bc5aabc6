// Package metrics exposes prometheus instrumentation for the fetch/parse/
// serve pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FetchTotal counts upstream queries by query name and outcome.
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econboard_fetch_total",
		Help: "Upstream text-API queries by query and status.",
	}, []string{"query", "status"})

	// FetchDuration observes per-query latency.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "econboard_fetch_duration_seconds",
		Help:    "Upstream text-API query latency.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"query"})

	// RecordsParsed counts successfully decoded records.
	RecordsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econboard_records_parsed_total",
		Help: "Candidate records decoded into events.",
	}, []string{"category", "direction"})

	// RecordsDropped counts candidate records discarded by the parser.
	RecordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econboard_records_dropped_total",
		Help: "Candidate records dropped (field count or time resolution).",
	}, []string{"category", "direction"})

	// EventsStored is the size of the current snapshot.
	EventsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "econboard_events_stored",
		Help: "Events in the current in-memory snapshot.",
	})

	// RefreshTotal counts full refresh cycles by outcome.
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "econboard_refresh_total",
		Help: "Full fetch-parse-replace cycles by status.",
	}, []string{"status"})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
