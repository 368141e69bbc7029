package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported by the connector.
type Metrics struct {
	RPCRequests         *prometheus.CounterVec
	ShardQueries        *prometheus.CounterVec
	BalanceAggregations *prometheus.CounterVec
	SessionConnects     *prometheus.CounterVec
	SessionDisconnects  *prometheus.CounterVec
	ShippedLogLines     *prometheus.CounterVec
	ConnectedAccounts   prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connector",
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC requests sent to chain providers.",
		}, []string{"method", "outcome"}),
		ShardQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connector",
			Name:      "shard_queries_total",
			Help:      "Per-shard balance queries sent to multi-shard chains.",
		}, []string{"network", "outcome"}),
		BalanceAggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connector",
			Name:      "balance_aggregations_total",
			Help:      "Balance aggregation passes over the session accounts.",
		}, []string{"outcome"}),
		SessionConnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connector",
			Name:      "session_connects_total",
			Help:      "Connect attempts by outcome.",
		}, []string{"outcome"}),
		SessionDisconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connector",
			Name:      "session_disconnects_total",
			Help:      "Session terminations by cause.",
		}, []string{"cause"}),
		ShippedLogLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connector",
			Name:      "shipped_log_lines_total",
			Help:      "Log lines sent to the remote sink.",
		}, []string{"level", "outcome"}),
		ConnectedAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "connector",
			Name:      "connected_accounts",
			Help:      "Accounts exposed by the current session.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RPCRequests,
			m.ShardQueries,
			m.BalanceAggregations,
			m.SessionConnects,
			m.SessionDisconnects,
			m.ShippedLogLines,
			m.ConnectedAccounts,
		)
	}
	return m
}

// Outcome maps an error to the outcome label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
