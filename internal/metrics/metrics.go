package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EvaluationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signalengine_evaluations_total",
			Help: "Total number of window evaluations performed.",
		},
	)

	SignalsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalengine_signals_emitted_total",
			Help: "Total number of signals emitted, by direction.",
		},
		[]string{"direction"},
	)

	ReplayTradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalengine_replay_trades_closed_total",
			Help: "Total number of simulated trades closed during replay, by close reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(EvaluationsTotal, SignalsEmitted, ReplayTradesClosed)
}
