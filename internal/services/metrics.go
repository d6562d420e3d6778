package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcome labels
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics for the brute-force guard and login flow.
var (
	// loginAttempts counts ledger entries by outcome.
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total number of recorded login attempts",
	}, []string{"outcome"})

	// loginRejections counts guard rejections by the key that tripped.
	loginRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_rejections_total",
		Help: "Total number of logins rejected before credential verification",
	}, []string{"scope"})

	// loginDeviceChanges counts logins from a platform other than the last successful one.
	loginDeviceChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "login_device_changes_total",
		Help: "Total number of logins flagged as a device change",
	})
)

func recordAttemptMetric(succeeded bool) {
	outcome := outcomeFailure
	if succeeded {
		outcome = outcomeSuccess
	}
	loginAttempts.WithLabelValues(outcome).Inc()
}
