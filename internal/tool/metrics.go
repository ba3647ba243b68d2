package tool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
	outcomeStale   = "stale"
)

var submissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "engcalc",
		Name:      "tool_submissions_total",
		Help:      "Form submissions by tool, tab and outcome.",
	},
	[]string{"tool", "tab", "outcome"},
)

func countSubmission(tool, tab, outcome string) {
	submissionsTotal.WithLabelValues(tool, tab, outcome).Inc()
}
