package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the publication cost service.
// Metrics are organized by subsystem: analyses, works, publisher resolution,
// and metadata-source requests. All counters and histograms are registered via
// promauto for automatic registration with the default Prometheus registry.
type Metrics struct {
	// AnalysesStarted counts cost analyses initiated.
	AnalysesStarted prometheus.Counter

	// AnalysesCompleted counts analyses that finished successfully.
	AnalysesCompleted prometheus.Counter

	// AnalysesFailed counts analyses that ended in failure.
	AnalysesFailed prometheus.Counter

	// AnalysisDuration observes end-to-end analysis duration in seconds.
	AnalysisDuration prometheus.Histogram

	// WorksFetched counts work records retrieved from the metadata source.
	WorksFetched prometheus.Counter

	// WorksAnalyzed counts works that survived resolution and were costed.
	WorksAnalyzed prometheus.Counter

	// WorksDropped counts works excluded from aggregates, labeled by reason
	// ("unknown_publisher", "preprint").
	WorksDropped *prometheus.CounterVec

	// PublisherConflicts counts works whose locations named more than one
	// distinct publisher.
	PublisherConflicts prometheus.Counter

	// CostAttributed accumulates total attributed cost in USD, labeled by
	// estimation tier ("reported", "estimated").
	CostAttributed *prometheus.CounterVec

	// SourceRequestsTotal counts HTTP requests to the metadata source,
	// labeled by endpoint.
	SourceRequestsTotal *prometheus.CounterVec

	// SourceRequestsFailed counts failed requests to the metadata source,
	// labeled by endpoint.
	SourceRequestsFailed *prometheus.CounterVec

	// SourceRequestDuration observes metadata-source request duration in
	// seconds, labeled by endpoint.
	SourceRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		AnalysesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_started_total",
			Help:      "Total number of cost analyses started",
		}),
		AnalysesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_completed_total",
			Help:      "Total number of cost analyses completed successfully",
		}),
		AnalysesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_failed_total",
			Help:      "Total number of cost analyses that failed",
		}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end duration of cost analyses in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		WorksFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "works_fetched_total",
			Help:      "Total number of work records fetched from the metadata source",
		}),
		WorksAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "works_analyzed_total",
			Help:      "Total number of works included in aggregates",
		}),
		WorksDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "works_dropped_total",
			Help:      "Total number of works excluded from aggregates by reason",
		}, []string{"reason"}),
		PublisherConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publisher_conflicts_total",
			Help:      "Total number of works whose locations named multiple distinct publishers",
		}),
		CostAttributed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cost_attributed_usd_total",
			Help:      "Total attributed cost in USD by estimation tier",
		}, []string{"tier"}),
		SourceRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total HTTP requests to the metadata source by endpoint",
		}, []string{"endpoint"}),
		SourceRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_failed_total",
			Help:      "Total failed HTTP requests to the metadata source by endpoint",
		}, []string{"endpoint"}),
		SourceRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of metadata-source HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
