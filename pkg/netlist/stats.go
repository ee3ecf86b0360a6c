package netlist

import "github.com/splogdes/fuznet/pkg/netlib"

// Stats is the snapshot returned by GetStats, the source data for
// <prefix>_stats.json and the gauges pkg/metrics sets once at the end of
// each orchestrator run. Per SPEC_FULL §4.2.9.
type Stats struct {
	NetCount        int            `json:"net_count"`
	ModuleCount     int            `json:"module_count"`
	DrivenNetCount  int            `json:"driven_net_count"`
	UndrivenNetCount int           `json:"undriven_net_count"`
	OutputNetCount  int            `json:"output_net_count"`
	InputNetCount   int            `json:"input_net_count"`
	ModulesBySpec   map[string]int `json:"modules_by_spec"`
}

// GetStats tallies the current graph shape.
func (nl *Netlist) GetStats() Stats {
	s := Stats{ModulesBySpec: map[string]int{}}
	for _, n := range nl.nets {
		s.NetCount++
		if n.Driver != nil {
			s.DrivenNetCount++
		} else {
			s.UndrivenNetCount++
		}
		switch n.Type {
		case netlib.ExtOut:
			s.OutputNetCount++
		case netlib.ExtIn, netlib.ExtClk:
			s.InputNetCount++
		}
	}
	for _, m := range nl.modules {
		s.ModuleCount++
		s.ModulesBySpec[m.Spec.Name]++
	}
	return s
}
