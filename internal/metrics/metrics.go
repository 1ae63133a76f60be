// Package metrics exposes Prometheus counters for the reconciliation
// layer: remote call outcomes, offline fallbacks, checkout results.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteCalls counts remote service calls by operation and outcome
	// (ok, rejected, network_error).
	RemoteCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satchel_remote_calls_total",
			Help: "Remote service calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// OfflineFallbacks counts operations that fell back to the local
	// store after a network failure.
	OfflineFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satchel_offline_fallbacks_total",
			Help: "Operations served by the local store after a network failure",
		},
		[]string{"operation"},
	)

	// Checkouts counts checkout attempts by outcome (ok, empty_cart,
	// network_error, rejected, error).
	Checkouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satchel_checkouts_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// Snapshot gathers the satchel counter families into a flat
// name{label=value,...} map. The CLI is short-lived and never scraped,
// so this is how the counters reach a display surface.
func Snapshot() (map[string]float64, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for _, fam := range families {
		if !strings.HasPrefix(fam.GetName(), "satchel_") {
			continue
		}
		for _, m := range fam.GetMetric() {
			c := m.GetCounter()
			if c == nil {
				continue
			}
			key := fam.GetName()
			if labels := m.GetLabel(); len(labels) > 0 {
				parts := make([]string, 0, len(labels))
				for _, l := range labels {
					parts = append(parts, l.GetName()+"="+l.GetValue())
				}
				key += "{" + strings.Join(parts, ",") + "}"
			}
			out[key] = c.GetValue()
		}
	}
	return out, nil
}

// ObserveRemoteCall records one remote call outcome.
func ObserveRemoteCall(operation string, err error, isNetwork func(error) bool) {
	switch {
	case err == nil:
		RemoteCalls.WithLabelValues(operation, "ok").Inc()
	case isNetwork(err):
		RemoteCalls.WithLabelValues(operation, "network_error").Inc()
	default:
		RemoteCalls.WithLabelValues(operation, "rejected").Inc()
	}
}
