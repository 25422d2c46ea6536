package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dgallion1/xrefmend/internal/diag"
)

var (
	// diagnosticsTotal counts diagnostics by rule, e.g. one per prefix edit.
	// Labels: rule, severity, format (source file extension)
	diagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xrefmend",
		Subsystem: "reconcile",
		Name:      "diagnostics_total",
		Help:      "Diagnostics emitted while reconciling documents",
	}, []string{"rule", "severity", "format"})

	// reconcileDuration measures one full transform pass over a tree.
	// Labels: format
	reconcileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "xrefmend",
		Subsystem: "reconcile",
		Name:      "duration_seconds",
		Help:      "Time spent running the transform pipeline on a document",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	}, []string{"format"})

	// jobsTotal counts finished jobs.
	// Labels: status (completed, failed)
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xrefmend",
		Subsystem: "jobs",
		Name:      "finished_total",
		Help:      "Jobs that reached a terminal status",
	}, []string{"status"})

	// storeRetries counts retried pathstore writes.
	storeRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "xrefmend",
		Subsystem: "store",
		Name:      "retries_total",
		Help:      "Pathstore writes retried after a transient failure",
	})
)

// RecordDiagnostics counts each message under its rule.
func RecordDiagnostics(format string, msgs []diag.Message) {
	for _, m := range msgs {
		diagnosticsTotal.WithLabelValues(m.RuleID, string(m.Severity), format).Inc()
	}
}

// ObserveReconcile records the duration of a transform pass.
func ObserveReconcile(format string, d time.Duration) {
	reconcileDuration.WithLabelValues(format).Observe(d.Seconds())
}

// RecordJob counts a job reaching a terminal status.
func RecordJob(status string) {
	jobsTotal.WithLabelValues(status).Inc()
}

// RecordStoreRetry counts one retried pathstore write.
func RecordStoreRetry() {
	storeRetries.Inc()
}
