// Package metrics exposes Prometheus instrumentation for the firewall
// core and the external tool invocations it performs.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all portcullis metrics.
type Registry struct {
	// Hole registry metrics
	HolesOpen  *prometheus.GaugeVec   // current tracked holes, by protocol
	PunchTotal *prometheus.CounterVec // punch attempts, by protocol and result
	PlugTotal  *prometheus.CounterVec // plug attempts, by protocol and result

	// External tool metrics
	CommandTotal *prometheus.CounterVec // tool invocations, by tool and result

	// VPN setup metrics
	VpnSetupTotal    *prometheus.CounterVec // setup attempts, by direction and result
	VpnRollbackTotal prometheus.Counter     // unwinds triggered by failed enables
}

// GetRegistry returns the singleton metrics registry, creating and
// registering it on first use.
func GetRegistry() *Registry {
	once.Do(func() {
		registry = newRegistry(prometheus.DefaultRegisterer)
	})
	return registry
}

func newRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		HolesOpen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "portcullis",
			Name:      "holes_open",
			Help:      "Number of currently tracked firewall holes",
		}, []string{"protocol"}),

		PunchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portcullis",
			Name:      "punch_total",
			Help:      "Hole punch attempts",
		}, []string{"protocol", "result"}),

		PlugTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portcullis",
			Name:      "plug_total",
			Help:      "Hole plug attempts",
		}, []string{"protocol", "result"}),

		CommandTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portcullis",
			Name:      "command_total",
			Help:      "External tool invocations",
		}, []string{"tool", "result"}),

		VpnSetupTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portcullis",
			Name:      "vpn_setup_total",
			Help:      "VPN setup transactions",
		}, []string{"direction", "result"}),

		VpnRollbackTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "portcullis",
			Name:      "vpn_rollback_total",
			Help:      "Unwinds performed after a failed VPN enable",
		}),
	}
}

// Result label values.
const (
	ResultOK   = "ok"
	ResultFail = "fail"
)

// ResultLabel converts a boolean outcome into its label value.
func ResultLabel(ok bool) string {
	if ok {
		return ResultOK
	}
	return ResultFail
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
