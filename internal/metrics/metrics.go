// Package metrics holds the Prometheus collectors of both binaries. The
// collectors register with the default registry at init; the server exposes
// them on /metrics and the client summarizes them in its status command.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "evorun"

var (
	clientRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Remote calls made by the client, labeled by operation and outcome.",
	}, []string{"operation", "outcome"})

	clientRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Latency of remote calls made by the client.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"operation"})

	syncRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Reconciliation runs by result (completed, deferred, failed, busy).",
	}, []string{"result"})

	syncRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "rows_total",
		Help:      "Rows handled by reconciliation, labeled by phase and action.",
	}, []string{"phase", "action"})

	lastSync = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "last_completed_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed reconciliation.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, labeled by route pattern and status code.",
	}, []string{"route", "code"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of served HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(clientRequests, clientRequestDuration, syncRuns, syncRows, lastSync,
		httpRequests, httpDuration)
}

// RecordClientRequest counts one remote call.
func RecordClientRequest(operation, outcome string, d time.Duration) {
	clientRequests.WithLabelValues(operation, outcome).Inc()
	clientRequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func RecordSyncRun(result string) {
	syncRuns.WithLabelValues(result).Inc()
}

// AddSyncRows adds n to the counter of phase/action. Zero is a no-op.
func AddSyncRows(phase, action string, n int) {
	if n <= 0 {
		return
	}
	syncRows.WithLabelValues(phase, action).Add(float64(n))
}

func RecordSyncCompleted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastSync.Set(float64(ts.Unix()))
}

func RecordHTTPRequest(route string, code int, d time.Duration) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Totals sums the counter family name from g by the value of label. The
// family name is given without the namespace. A family that was never
// incremented yields an empty map.
func Totals(g prometheus.Gatherer, name, label string) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	full := prometheus.BuildFQName(namespace, "", name)
	out := map[string]float64{}
	for _, f := range families {
		if f.GetName() != full {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label {
					out[lp.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	return out, nil
}

// SyncRunTotals returns reconciliation runs of this process by result.
func SyncRunTotals(g prometheus.Gatherer) (map[string]float64, error) {
	return Totals(g, "sync_runs_total", "result")
}

// ClientRequestTotals returns remote calls of this process by outcome.
func ClientRequestTotals(g prometheus.Gatherer) (map[string]float64, error) {
	return Totals(g, "client_requests_total", "outcome")
}
