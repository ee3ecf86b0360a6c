package netlist

import (
	"fmt"
	"math/rand"

	"github.com/splogdes/fuznet/pkg/netlib"
)

// AddInitialNets seeds the graph with n fresh undriven Logic nets, the
// starting raw material every other mutator fans modules out from.
func (nl *Netlist) AddInitialNets(n int) []Id {
	ids := make([]Id, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, nl.newUndrivenNet(netlib.Logic, ""))
	}
	return ids
}

// EnsureClock guarantees exactly one net labeled "clk" exists: an EXT_CLK
// boundary net buffered into a CLK net through a random EXT_CLK->CLK
// buffer, mirroring AddExternalNet's EXT_IN->LOGIC pattern so the board's
// clock reaches sequential cells the same way any other external signal
// does. Idempotent: a second call returns the existing CLK net's id
// without instantiating another buffer. If the library carries no
// EXT_CLK->CLK buffer, falls back to a bare externally-driven CLK net
// (the clock is then assumed to be wired in by whatever embeds this
// netlist, same as an EXT_CLK net always is).
func (nl *Netlist) EnsureClock() Id {
	for _, n := range nl.nets {
		if n.Label == "clk" {
			return n.ID
		}
	}

	extClk := nl.newUndrivenNet(netlib.ExtClk, "")
	buf, err := nl.lib.RandomBuffer(nl.rng, netlib.ExtClk, netlib.Clk)
	if err != nil {
		return nl.newUndrivenNet(netlib.Clk, "clk")
	}
	mod, err := nl.instantiate(buf, false)
	if err != nil {
		return nl.newUndrivenNet(netlib.Clk, "clk")
	}
	inPort := mod.Inputs[buf.Inputs[0].Name]
	nl.bindInput(mod, inPort, 0, extClk)
	outPort := mod.Outputs[buf.Outputs[0].Name]
	clkID := nl.bindFreshOutput(mod, outPort, 0, netlib.Clk)
	nl.nets[clkID].Label = "clk"
	return clkID
}

// AddExternalNet creates one EXT_IN net and attaches a random EXT_IN->LOGIC
// buffer to it, per §4.2's add_external_nets. There is no EXT_OUT-creating
// variant: an ExtOut net only ever comes into being as a buffer's output
// (AddRandomModule/DriveUndrivenNet/BufferUnconnectedOutputs), never bare.
func (nl *Netlist) AddExternalNet() (Id, error) {
	extIn := nl.newUndrivenNet(netlib.ExtIn, "")
	buf, err := nl.lib.RandomBuffer(nl.rng, netlib.ExtIn, netlib.Logic)
	if err != nil {
		return 0, fmt.Errorf("add external net: %w", err)
	}
	mod, err := nl.instantiate(buf, false)
	if err != nil {
		return 0, fmt.Errorf("add external net: %w", err)
	}
	inPort := mod.Inputs[buf.Inputs[0].Name]
	nl.bindInput(mod, inPort, 0, extIn)
	outPort := mod.Outputs[buf.Outputs[0].Name]
	nl.bindFreshOutput(mod, outPort, 0, netlib.Logic)
	return extIn, nil
}

// AddUndrivenNets adds n fresh undriven nets of the given type, the
// pool DriveUndrivenNet(s) draws candidates from.
func (nl *Netlist) AddUndrivenNets(n int, t netlib.NetType) []Id {
	ids := make([]Id, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, nl.newUndrivenNet(t, ""))
	}
	return ids
}

func (nl *Netlist) newUndrivenNet(t netlib.NetType, label string) Id {
	id := nl.allocID()
	nl.nets[id] = &Net{ID: id, Type: t, Label: label}
	return id
}

// UndrivenNets returns, in id order, every net with no driver that is
// eligible to receive one (Logic, Clk and ExtOut nets — ExtIn/ExtClk are
// driven by the external environment by definition and never appear
// here).
func (nl *Netlist) UndrivenNets() []*Net {
	var out []*Net
	for _, n := range nl.Nets() {
		if n.Driver != nil {
			continue
		}
		switch n.Type {
		case netlib.ExtIn, netlib.ExtClk:
			continue
		default:
			out = append(out, n)
		}
	}
	return out
}

// AddRandomModule instantiates a cell chosen by weighted random draw from
// the library (optionally restricted by filter), binding each input bit to
// an existing net of matching type picked uniformly at random and each
// output bit to a fresh net it immediately drives. Per §4.2.1's "random
// instantiation".
func (nl *Netlist) AddRandomModule(filter netlib.Filter) (*Module, error) {
	spec, err := nl.lib.Random(nl.rng, filter)
	if err != nil {
		return nil, fmt.Errorf("add random module: %w", err)
	}
	return nl.instantiate(spec, true)
}

// instantiate registers a fresh module instance of spec. When connectRandom
// is true, every input bit is bound to an existing net of matching type
// chosen uniformly at random (becoming one more sink of that net) and
// every output bit drives a freshly created net — §4.2.1's random
// instantiation. When false, the module's ports are left completely
// unbound; the caller (DriveUndrivenNet, BufferUnconnectedOutputs,
// AddExternalNet) wires every bit itself — §4.2.2's instantiate-without-
// random-wiring.
func (nl *Netlist) instantiate(spec *netlib.ModuleSpec, connectRandom bool) (*Module, error) {
	mod := &Module{
		ID:      nl.allocID(),
		Spec:    spec,
		Params:  randomParamValues(nl.rng, spec),
		Inputs:  make(map[string]*Port, len(spec.Inputs)),
		Outputs: make(map[string]*Port, len(spec.Outputs)),
	}
	for _, ps := range spec.Inputs {
		mod.Inputs[ps.Name] = &Port{Name: ps.Name, Dir: netlib.Input, NetType: ps.NetType, Nets: make([]Id, ps.Width)}
	}
	for _, ps := range spec.Outputs {
		mod.Outputs[ps.Name] = &Port{Name: ps.Name, Dir: netlib.Output, NetType: ps.NetType, Nets: make([]Id, ps.Width)}
	}
	nl.modules[mod.ID] = mod

	if !connectRandom {
		return mod, nil
	}

	for _, ps := range spec.Inputs {
		port := mod.Inputs[ps.Name]
		for bit := 0; bit < ps.Width; bit++ {
			t := ps.NetType
			source, err := nl.randomNet(func(n *Net) bool { return n.Type == t })
			if err != nil {
				delete(nl.modules, mod.ID)
				return nil, fmt.Errorf("instantiate %s: %w", spec.Name, err)
			}
			nl.bindInput(mod, port, bit, source)
		}
	}
	for _, ps := range spec.Outputs {
		port := mod.Outputs[ps.Name]
		for bit := 0; bit < ps.Width; bit++ {
			nl.bindFreshOutput(mod, port, bit, ps.NetType)
		}
	}
	return mod, nil
}

// randomNet returns an existing net satisfying filter, chosen uniformly —
// the Go equivalent of the original's get_random_net.
func (nl *Netlist) randomNet(filter func(*Net) bool) (Id, error) {
	var candidates []Id
	for _, n := range nl.Nets() {
		if filter == nil || filter(n) {
			candidates = append(candidates, n.ID)
		}
	}
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: no net satisfies filter", ErrNoCandidate)
	}
	return candidates[nl.rng.Intn(len(candidates))], nil
}

// bindInput binds port's bit to the existing net netID, registering mod as
// one more sink of that net.
func (nl *Netlist) bindInput(mod *Module, port *Port, bit int, netID Id) {
	port.Nets[bit] = netID
	nl.nets[netID].Sinks = append(nl.nets[netID].Sinks, PortBit{Module: mod.ID, Port: port.Name, Bit: bit})
}

// bindFreshOutput creates a brand new net of type t and binds port's bit
// to it as its driver, returning the new net's id.
func (nl *Netlist) bindFreshOutput(mod *Module, port *Port, bit int, t netlib.NetType) Id {
	id := nl.allocID()
	driver := PortBit{Module: mod.ID, Port: port.Name, Bit: bit}
	nl.nets[id] = &Net{ID: id, Type: t, Driver: &driver}
	port.Nets[bit] = id
	return id
}

// bindOutput binds port's bit as the driver of the existing (undriven)
// net netID.
func (nl *Netlist) bindOutput(mod *Module, port *Port, bit int, netID Id) {
	driver := PortBit{Module: mod.ID, Port: port.Name, Bit: bit}
	nl.nets[netID].Driver = &driver
	port.Nets[bit] = netID
}

func randomParamValues(rng *rand.Rand, spec *netlib.ModuleSpec) map[string]uint64 {
	if len(spec.Params) == 0 {
		return nil
	}
	values := make(map[string]uint64, len(spec.Params))
	for _, p := range spec.Params {
		width := p.Width
		if width <= 0 || width > 63 {
			width = 63
		}
		values[p.Name] = uint64(rng.Int63()) & ((uint64(1) << uint(width)) - 1)
	}
	return values
}
