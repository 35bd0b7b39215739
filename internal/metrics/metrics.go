// Package metrics exposes Prometheus collectors for the investigation
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvestigationsTotal counts completed investigations by target type
	// and outcome ("valid", "invalid", "degraded").
	InvestigationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackeagle_investigations_total",
		Help: "Completed investigations by target type and outcome",
	}, []string{"type", "outcome"})

	// InvestigationDuration observes end-to-end investigation latency.
	InvestigationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blackeagle_investigation_duration_seconds",
		Help:    "End-to-end investigation duration",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	}, []string{"type"})

	// BranchFailures counts concurrent check branches that degraded to
	// their conservative default.
	BranchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackeagle_branch_failures_total",
		Help: "Check branches absorbed to a default value",
	}, []string{"branch"})

	// ScannerRuns counts external scanner invocations by mode and result
	// ("ok", "timeout", "canceled", "exec_error", "no_artifact").
	ScannerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackeagle_scanner_runs_total",
		Help: "External scanner invocations by mode and result",
	}, []string{"mode", "result"})

	// ScannerDuration observes external scanner wall-clock time.
	ScannerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blackeagle_scanner_duration_seconds",
		Help:    "External scanner run duration",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	}, []string{"mode"})

	// ProbeHits counts messaging-platform probes by platform and whether
	// the account was judged to exist.
	ProbeHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackeagle_probe_hits_total",
		Help: "Messaging presence probes by platform and outcome",
	}, []string{"platform", "exists"})
)
