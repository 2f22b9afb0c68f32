package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// enrichment pipeline.
type Metrics struct {
	ReadingsConsumed prometheus.Counter
	ReadingsProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Estimator outcomes.
	EstimatesUndefined prometheus.Counter     // readings where no wet-bulb value could be computed
	InputsClamped      *prometheus.CounterVec // labels: field={temperature,humidity}

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Station registry metrics.
	RegistryRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	RegistryCache       *prometheus.CounterVec // labels: result={hit,miss}
	RegistryAPIDuration prometheus.Histogram
	RegistryEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReadingsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wetbulb_etl",
			Name:      "readings_consumed_total",
			Help:      "Total readings read from the source topic.",
		}),
		ReadingsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wetbulb_etl",
			Name:      "readings_produced_total",
			Help:      "Total enriched readings written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wetbulb_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wetbulb_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		EstimatesUndefined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wetbulb_etl",
			Name:      "estimates_undefined_total",
			Help:      "Readings with missing or non-finite inputs, emitted without a wet-bulb value.",
		}),
		InputsClamped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wetbulb_etl",
			Name:      "inputs_clamped_total",
			Help:      "Inputs saturated into the estimator's validity bounds, by field.",
		}, []string{"field"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wetbulb_etl",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wetbulb_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		RegistryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wetbulb_etl",
			Name:      "registry_requests_total",
			Help:      "Station registry requests by outcome.",
		}, []string{"outcome"}),
		RegistryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wetbulb_etl",
			Name:      "registry_cache_total",
			Help:      "Station registry cache lookups by result.",
		}, []string{"result"}),
		RegistryAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wetbulb_etl",
			Name:      "registry_api_duration_seconds",
			Help:      "Station registry request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RegistryEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wetbulb_etl",
			Name:      "registry_enabled",
			Help:      "1 when station metadata enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ReadingsConsumed,
		m.ReadingsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.EstimatesUndefined,
		m.InputsClamped,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.RegistryRequests,
		m.RegistryCache,
		m.RegistryAPIDuration,
		m.RegistryEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReadingsConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wetbulb_etl", Name: "readings_consumed_total"}),
		ReadingsProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wetbulb_etl", Name: "readings_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wetbulb_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wetbulb_etl", Name: "pipeline_running"}),
		EstimatesUndefined:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wetbulb_etl", Name: "estimates_undefined_total"}),
		InputsClamped:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wetbulb_etl", Name: "inputs_clamped_total"}, []string{"field"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wetbulb_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wetbulb_etl", Name: "batch_processing_duration_seconds"}),
		RegistryRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wetbulb_etl", Name: "registry_requests_total"}, []string{"outcome"}),
		RegistryCache:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wetbulb_etl", Name: "registry_cache_total"}, []string{"result"}),
		RegistryAPIDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wetbulb_etl", Name: "registry_api_duration_seconds"}),
		RegistryEnabled:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wetbulb_etl", Name: "registry_enabled"}),
	}
}
