package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsReady = promauto.NewCounter(prometheus.CounterOpts{
		Name: "walletpay_sessions_ready_total",
		Help: "Number of payment sessions that completed initialization",
	})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "walletpay_sessions_started_total",
		Help: "Number of payment sessions presented to the user",
	})

	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "walletpay_sessions_completed_total",
		Help: "Number of payment sessions that produced a token",
	})

	SessionsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "walletpay_sessions_cancelled_total",
		Help: "Number of payment sessions cancelled by the user",
	})

	SessionsErrored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "walletpay_sessions_errored_total",
		Help: "Number of payment sessions that ended in an error",
	})

	TokenRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "walletpay_token_requests_total",
		Help: "Tokenization requests sent to the gateway by outcome",
	}, []string{"status"})
)
