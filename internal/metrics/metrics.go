package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/socialgraph-server/internal/model"
)

const namespace = "socialgraph"

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	relationOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Follow and unfollow attempts by outcome.",
		},
		[]string{"op", "result"},
	)

	reconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Reconciliation passes by success.",
		},
		[]string{"success"},
	)

	reconcileRepairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "repairs_total",
			Help:      "Adjacency lists rewritten by reconciliation.",
		},
		[]string{"list"},
	)

	reconcileConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "conflicts_total",
			Help:      "Repairs skipped because rows changed after the snapshot.",
		},
	)

	reconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "duration_seconds",
			Help:      "Duration of reconciliation passes.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	profileCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile_cache",
			Name:      "lookups_total",
			Help:      "Profile cache lookups and dropped fills by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		relationOps,
		reconcileRuns,
		reconcileRepairs,
		reconcileConflicts,
		reconcileDuration,
		profileCache,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// TrackInFlight increments the in-flight gauge and returns its decrement.
func TrackInFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// ObserveHTTPRequest records one finished HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRelationOp counts a follow or unfollow attempt by its outcome.
func RecordRelationOp(op string, err error) {
	relationOps.WithLabelValues(op, RelationResult(err)).Inc()
}

// RelationResult maps a ledger error to a metric label.
func RelationResult(err error) string {
	var storageErr *model.StorageError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrSelfRelation):
		return "self_relation"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrAlreadyFollowing):
		return "already_following"
	case errors.Is(err, model.ErrNotFollowing):
		return "not_following"
	case errors.As(err, &storageErr) && storageErr.Partial:
		return "partial"
	default:
		return "storage_error"
	}
}

// RecordReconcile records the outcome of a reconciliation pass.
func RecordReconcile(report model.ReconcileReport, err error) {
	reconcileRuns.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
	if !report.FinishedAt.IsZero() {
		reconcileDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
	for _, r := range report.Repairs {
		reconcileRepairs.WithLabelValues(string(r.List)).Inc()
	}
	reconcileConflicts.Add(float64(report.Conflicts))
}

// RecordProfileCache counts a cache outcome: "hit", "miss", "error" or "stale" for a dropped fill.
func RecordProfileCache(result string) {
	profileCache.WithLabelValues(result).Inc()
}
