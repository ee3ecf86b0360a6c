// Package netlist implements the mutable netlist graph: nets, ports,
// modules, and the Netlist container that owns them, plus the stochastic
// mutators the orchestrator drives and the structural-simplification,
// serialization and fingerprinting operations the reducer relies on.
package netlist

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/splogdes/fuznet/pkg/netlib"
)

// Id is the identity of a net or a module, drawn from one counter shared
// across both kinds so that ids stay unique after a JSON round trip.
type Id uint64

// PortBit names one bit of one port on one module instance: the unit a
// Net's driver and sinks are expressed in terms of.
type PortBit struct {
	Module Id
	Port   string
	Bit    int
}

// Net is a single-bit wire: at most one driver, any number of sinks.
// A nil Driver means undriven, except for EXT_IN/EXT_CLK nets, whose
// driver is implicitly the external environment.
type Net struct {
	ID     Id
	Type   netlib.NetType
	Driver *PortBit
	Sinks  []PortBit
	// Label is an optional human name (e.g. "clk") distinct from the
	// derived _<id>_ name; falls back to the derived name when empty.
	Label string
}

// Name returns the net's emitted identifier: Label if set, else the
// derived _<id>_ name padded per the naming rule given idWidth digits.
func (n *Net) Name(idWidth int) string {
	if n.Label != "" {
		return n.Label
	}
	return derivedName(n.ID, idWidth)
}

// Port is a (possibly multi-bit) named pin of a Module instance. Nets[i]
// is the net bound to bit i, in increasing-significance order.
type Port struct {
	Name    string
	Dir     netlib.PortDir
	NetType netlib.NetType
	Nets    []Id
}

func (p *Port) Width() int { return len(p.Nets) }

// Module is one instance of a ModuleSpec, with concrete ports bound to
// nets and concrete parameter values.
type Module struct {
	ID      Id
	Spec    *netlib.ModuleSpec
	Label   string
	Params  map[string]uint64
	Inputs  map[string]*Port
	Outputs map[string]*Port
}

// Name returns the module's emitted identifier: Label if set, else the
// derived _<id>_ name.
func (m *Module) Name(idWidth int) string {
	if m.Label != "" {
		return m.Label
	}
	return derivedName(m.ID, idWidth)
}

// InputOrder and OutputOrder return ports in the ModuleSpec's declaration
// order, so emission is reproducible regardless of map iteration.
func (m *Module) InputOrder() []*Port {
	out := make([]*Port, 0, len(m.Spec.Inputs))
	for _, spec := range m.Spec.Inputs {
		out = append(out, m.Inputs[spec.Name])
	}
	return out
}

func (m *Module) OutputOrder() []*Port {
	out := make([]*Port, 0, len(m.Spec.Outputs))
	for _, spec := range m.Spec.Outputs {
		out = append(out, m.Outputs[spec.Name])
	}
	return out
}

// Netlist owns every Net and Module in a design, the shared id counter,
// the cell library they're drawn from, and the single RNG every
// stochastic operation on the graph must draw from — the whole object
// graph is single-threaded and synchronous by construction.
type Netlist struct {
	lib     *netlib.Library
	rng     *rand.Rand
	nextID  Id
	nets    map[Id]*Net
	modules map[Id]*Module
}

// New constructs an empty Netlist bound to lib and seeded rng. The
// caller owns seed selection; New never reads a process-global source.
func New(lib *netlib.Library, rng *rand.Rand) *Netlist {
	return &Netlist{
		lib:     lib,
		rng:     rng,
		nextID:  1,
		nets:    make(map[Id]*Net),
		modules: make(map[Id]*Module),
	}
}

func (nl *Netlist) allocID() Id {
	id := nl.nextID
	nl.nextID++
	return id
}

// IdWidth implements the naming rule: W = floor(log10(id_counter)) + 1.
func (nl *Netlist) IdWidth() int {
	return idWidth(uint64(nl.nextID) - 1)
}

func idWidth(maxID uint64) int {
	if maxID == 0 {
		return 1
	}
	w := 0
	for maxID > 0 {
		w++
		maxID /= 10
	}
	return w
}

func derivedName(id Id, width int) string {
	return fmt.Sprintf("_%0*d_", width, id)
}

// Nets returns every net, sorted by id, so every caller that iterates the
// graph for emission or hashing sees the same reproducible order.
func (nl *Netlist) Nets() []*Net {
	out := make([]*Net, 0, len(nl.nets))
	for _, n := range nl.nets {
		out = append(out, n)
	}
	sortNets(out)
	return out
}

// Modules returns every module, sorted by id.
func (nl *Netlist) Modules() []*Module {
	out := make([]*Module, 0, len(nl.modules))
	for _, m := range nl.modules {
		out = append(out, m)
	}
	sortModules(out)
	return out
}

func (nl *Netlist) Net(id Id) (*Net, bool) {
	n, ok := nl.nets[id]
	return n, ok
}

func (nl *Netlist) Module(id Id) (*Module, bool) {
	m, ok := nl.modules[id]
	return m, ok
}

func (nl *Netlist) Library() *netlib.Library { return nl.lib }
func (nl *Netlist) Rng() *rand.Rand          { return nl.rng }

func sortNets(nets []*Net) {
	sort.Slice(nets, func(i, j int) bool { return nets[i].ID < nets[j].ID })
}

func sortModules(mods []*Module) {
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })
}
