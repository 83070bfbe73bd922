// Package metrics exports service counters and latencies to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pet-diary/internal/domain/alerts"
	"pet-diary/internal/domain/records"
)

const namespace = "pet_diary"

// Recorder implements the metrics hooks of the records, reminders and alerts
// services, plus the purge hook of the housekeeping job.
type Recorder struct {
	registry *prometheus.Registry

	batches         *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	completions     *prometheus.CounterVec
	evaluations     *prometheus.CounterVec
	alertsRaised    *prometheus.CounterVec
	purged          prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_batches_total",
			Help:      "Daily batch saves by outcome and failed step.",
		}, []string{"outcome", "failed_step"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "daily_batch_duration_seconds",
			Help:      "Daily batch save latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_completions_total",
			Help:      "Reminder completion toggles.",
		}, []string{"completed"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_evaluations_total",
			Help:      "Health alert evaluations by cache result.",
		}, []string{"cache"}),
		alertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Derived health alerts by type.",
		}, []string{"type"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotency_records_purged_total",
			Help:      "Batch idempotency records removed by housekeeping.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.batches,
		r.batchDuration,
		r.completions,
		r.evaluations,
		r.alertsRaised,
		r.purged,
		r.requestDuration,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveBatch(outcome records.BatchOutcome, failedStep records.Step, duration time.Duration) {
	r.batches.WithLabelValues(string(outcome), string(failedStep)).Inc()
	r.batchDuration.WithLabelValues(string(outcome)).Observe(duration.Seconds())
}

func (r *Recorder) ObserveCompletion(completed bool) {
	r.completions.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

func (r *Recorder) ObserveEvaluation(cacheHit bool, raised []alerts.Alert) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	r.evaluations.WithLabelValues(cache).Inc()
	if cacheHit {
		return
	}
	for _, alert := range raised {
		r.alertsRaised.WithLabelValues(string(alert.Type)).Inc()
	}
}

func (r *Recorder) ObservePurge(count int64) {
	if count > 0 {
		r.purged.Add(float64(count))
	}
}

// Middleware records request latency labelled with the matched chi route
// pattern, so path parameters do not explode cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.requestDuration.WithLabelValues(req.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
