// Package metrics provides Prometheus metrics for the prediction pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics collects and exposes pipeline Prometheus metrics.
type PipelineMetrics struct {
	registry *prometheus.Registry

	// Prediction metrics
	PredictionsTotal     *prometheus.CounterVec
	PredictionConfidence prometheus.Histogram
	PredictionEdge       prometheus.Histogram

	// Settlement metrics
	SettlementsTotal *prometheus.CounterVec
	HitRate          prometheus.Gauge
	PendingRecords   prometheus.Gauge

	// Provider metrics
	ProviderErrors *prometheus.CounterVec

	// Pipeline metrics
	RunsTotal     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
}

// NewPipelineMetrics creates a pipeline metrics collector with its own
// registry.
func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	m := &PipelineMetrics{
		registry: registry,

		PredictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_predictions_total",
				Help: "Total predictions produced",
			},
			[]string{"tier", "line_source"},
		),
		PredictionConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oracle_prediction_confidence",
				Help:    "Picked-side win probability distribution",
				Buckets: prometheus.LinearBuckets(0.50, 0.05, 10), // 0.50 to 0.95
			},
		),
		PredictionEdge: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oracle_prediction_edge_points",
				Help:    "Absolute totals edge in points",
				Buckets: []float64{1, 2, 4, 6, 8, 10, 15, 20, 30},
			},
		),

		SettlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_settlements_total",
				Help: "Total records settled",
			},
			[]string{"result"},
		),
		HitRate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "oracle_hit_rate",
				Help: "All-time hit rate over settled records",
			},
		),
		PendingRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "oracle_pending_records",
				Help: "Records awaiting settlement",
			},
		),

		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_provider_errors_total",
				Help: "Upstream provider failures",
			},
			[]string{"provider"},
		),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_pipeline_runs_total",
				Help: "Pipeline runs by outcome",
			},
			[]string{"status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oracle_stage_duration_seconds",
				Help:    "Per-stage pipeline duration",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			[]string{"stage"},
		),
	}
	m.registerAll()
	return m
}

func (m *PipelineMetrics) registerAll() {
	m.registry.MustRegister(
		m.PredictionsTotal,
		m.PredictionConfidence,
		m.PredictionEdge,
		m.SettlementsTotal,
		m.HitRate,
		m.PendingRecords,
		m.ProviderErrors,
		m.RunsTotal,
		m.StageDuration,
	)
}

// Registry returns the underlying Prometheus registry.
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving this registry.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPrediction observes one produced prediction.
func (m *PipelineMetrics) RecordPrediction(tier, lineSource string, confidence, edge float64) {
	m.PredictionsTotal.WithLabelValues(tier, lineSource).Inc()
	m.PredictionConfidence.Observe(confidence)
	m.PredictionEdge.Observe(edge)
}

// RecordSettlement observes one settled record.
func (m *PipelineMetrics) RecordSettlement(result string) {
	m.SettlementsTotal.WithLabelValues(result).Inc()
}

// RecordSettlements observes a batch of settled records.
func (m *PipelineMetrics) RecordSettlements(result string, n int) {
	if n > 0 {
		m.SettlementsTotal.WithLabelValues(result).Add(float64(n))
	}
}

// RecordProviderError observes an upstream failure.
func (m *PipelineMetrics) RecordProviderError(provider string) {
	m.ProviderErrors.WithLabelValues(provider).Inc()
}

// RecordRun observes a completed pipeline run.
func (m *PipelineMetrics) RecordRun(status string) {
	m.RunsTotal.WithLabelValues(status).Inc()
}

// ObserveStage observes one stage's duration.
func (m *PipelineMetrics) ObserveStage(stage string, seconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// UpdateAccuracy refreshes the hit-rate and pending gauges from the log
// summary.
func (m *PipelineMetrics) UpdateAccuracy(hits, misses, pending int) {
	if settled := hits + misses; settled > 0 {
		m.HitRate.Set(float64(hits) / float64(settled))
	}
	m.PendingRecords.Set(float64(pending))
}
