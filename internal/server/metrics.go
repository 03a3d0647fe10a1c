package server

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ascentd/ascent/internal/search"
)

// Metrics holds the Prometheus instruments shared by all search runs.
type Metrics struct {
	evaluations  prometheus.Counter
	generations  prometheus.Counter
	errors       *prometheus.CounterVec
	bestFitness  prometheus.Gauge
	remaining    prometheus.Gauge
	evalDuration prometheus.Histogram
}

// NewMetrics registers the search metric families on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		evaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "ascent_evaluations_total",
			Help: "Total fitness evaluation attempts across all searches.",
		}),
		generations: factory.NewCounter(prometheus.CounterOpts{
			Name: "ascent_generations_total",
			Help: "Total finished generations across all searches.",
		}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ascent_errors_total",
			Help: "Total generator and evaluation failures.",
		}, []string{"kind"}),
		bestFitness: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ascent_best_fitness",
			Help: "Best fitness seen by the most recently improving search.",
		}),
		remaining: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ascent_evaluations_remaining",
			Help: "Remaining evaluation budget of the most recently active search.",
		}),
		evalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ascent_evaluation_duration_seconds",
			Help:    "Wall-clock duration of fitness evaluations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
	}
}

// Observer returns a per-run observer feeding these metrics. Runs are
// single-threaded, so the observer needs no locking of its own.
func (m *Metrics) Observer() search.Observer {
	return &metricsObserver{metrics: m}
}

type metricsObserver struct {
	search.NoopObserver

	metrics   *Metrics
	sampledAt time.Time
}

func (o *metricsObserver) StartGeneration(remaining int, _ *search.Result) {
	if remaining != search.Unbounded {
		o.metrics.remaining.Set(float64(remaining))
	}
}

func (o *metricsObserver) SampleSolution(search.Candidate) {
	o.sampledAt = time.Now()
}

func (o *metricsObserver) EvalSolution(_ search.Candidate, _ float64) {
	o.metrics.evaluations.Inc()
	if !o.sampledAt.IsZero() {
		o.metrics.evalDuration.Observe(time.Since(o.sampledAt).Seconds())
	}
}

func (o *metricsObserver) Error(err error, _ search.Candidate) {
	kind := "evaluation"
	var genErr *search.GenerationError
	if stderrors.As(err, &genErr) {
		kind = "generation"
	}
	o.metrics.errors.WithLabelValues(kind).Inc()
}

func (o *metricsObserver) UpdateBest(best search.Result, _ *search.Result) {
	o.metrics.bestFitness.Set(best.Fitness)
}

func (o *metricsObserver) FinishGeneration([]float64) {
	o.metrics.generations.Inc()
}
