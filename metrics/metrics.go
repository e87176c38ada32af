package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventapi"

// Registry holds every metric the service exports on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

var (
	HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

var (
	// GeocodingRequestsTotal counts lookups by outcome: cache, nominatim, not_found, error.
	GeocodingRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocoding_requests_total",
			Help:      "Geocoding lookups by outcome",
		},
		[]string{"outcome"},
	)

	GeocodingNominatimLatency = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocoding_nominatim_latency_seconds",
			Help:      "Latency of Nominatim search calls",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		},
	)
)

// ParticipantTransitionsTotal counts membership writes by resulting status.
var ParticipantTransitionsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "participant_transitions_total",
		Help:      "Participant rows written, by resulting status",
	},
	[]string{"status"},
)
