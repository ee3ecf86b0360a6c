// Package metrics instruments the orchestrator with Prometheus counters
// and gauges (the ReducerSteps counter is registered, but the reducer does
// not increment it), the way the teacher's
// pkg/monitoring/metrics package defines per-component metric sets —
// adapted here from a live-Prometheus query client to in-process
// instrumentation, since this tool has no running cluster to query,
// only its own graph state to expose.
package metrics

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// MetricDefinition documents one exported metric, mirroring the
// teacher's MetricDefinition{Name,Query,Description,Type,Labels} shape
// minus the PromQL Query field, which has no meaning for a metric this
// process defines itself rather than scrapes.
type MetricDefinition struct {
	Name        string
	Description string
	Type        string
	Labels      []string
}

// Registry owns every metric this tool exports: commands applied,
// iterations run, reducer steps, and point-in-time graph size gauges.
type Registry struct {
	reg *prometheus.Registry

	CommandsApplied  *prometheus.CounterVec
	Iterations       prometheus.Counter
	ReducerSteps     *prometheus.CounterVec
	NetCount         prometheus.Gauge
	ModuleCount      prometheus.Gauge
	UndrivenNetCount prometheus.Gauge
}

// NewRegistry builds a fresh Registry with every metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		CommandsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuznet_commands_applied_total",
			Help: "Number of commands successfully applied to the netlist, by command kind.",
		}, []string{"kind"}),
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fuznet_orchestrator_iterations_total",
			Help: "Number of orchestrator iterations run.",
		}),
		ReducerSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuznet_reducer_steps_total",
			Help: "Number of reducer steps, by outcome (adopted/rolled_back/already_seen).",
		}, []string{"outcome"}),
		NetCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fuznet_netlist_net_count",
			Help: "Current number of nets in the netlist.",
		}),
		ModuleCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fuznet_netlist_module_count",
			Help: "Current number of module instances in the netlist.",
		}),
		UndrivenNetCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fuznet_netlist_undriven_net_count",
			Help: "Current number of undriven nets in the netlist.",
		}),
	}

	reg.MustRegister(r.CommandsApplied, r.Iterations, r.ReducerSteps, r.NetCount, r.ModuleCount, r.UndrivenNetCount)
	return r
}

// Definitions lists every metric this registry exports, for documentation.
func Definitions() []MetricDefinition {
	return []MetricDefinition{
		{Name: "fuznet_commands_applied_total", Description: "Commands applied, by kind", Type: "counter", Labels: []string{"kind"}},
		{Name: "fuznet_orchestrator_iterations_total", Description: "Orchestrator iterations run", Type: "counter"},
		{Name: "fuznet_reducer_steps_total", Description: "Reducer steps, by outcome", Type: "counter", Labels: []string{"outcome"}},
		{Name: "fuznet_netlist_net_count", Description: "Current net count", Type: "gauge"},
		{Name: "fuznet_netlist_module_count", Description: "Current module count", Type: "gauge"},
		{Name: "fuznet_netlist_undriven_net_count", Description: "Current undriven net count", Type: "gauge"},
	}
}

// Handler returns the promhttp handler serving this registry's metrics
// in Prometheus text exposition format at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Snapshot renders a one-shot text-exposition dump of the current metric
// values; no command of this tool writes it to a file.
func (r *Registry) Snapshot() ([]byte, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}
