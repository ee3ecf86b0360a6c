package netlist

import (
	"fmt"
	"math/rand"

	"github.com/splogdes/fuznet/pkg/netlib"
)

// DriveUndrivenNet gives netID a driver by literally following §4.2.2:
// draw one sequential/combinational coin for this net (weighted by
// seqModProb), instantiate a fresh module of matching output type without
// random wiring, bind its output directly to netID, then wire each of the
// new driver's own input bits. A LOGIC input is restricted to sources
// outside the driver's own forward cone (so as not to close a
// combinational loop through the net just driven) unless the draw came
// out sequential and that input is registered into the driven output per
// ModuleSpec.SeqConns; such a registered input, and any non-LOGIC input
// (CLK, EXT_IN), draws from every matching net unconditionally since a
// register boundary or an external source can never participate in a
// combinational cycle.
//
// seqModProb is the probability of restricting the driver-spec draw to
// non-combinational (sequential) cells rather than combinational ones.
// seqPortProb is unused when the driver spec has a single matching output
// (the literal case); when more than one output of netID's type exists on
// the drawn spec it is the probability of preferring one marked sequential
// over a combinational one, an extension beyond the single-output driver
// specs §4.2.2 assumes, kept for libraries whose cells expose more than
// one output port of the same type.
func (nl *Netlist) DriveUndrivenNet(netID Id, seqModProb, seqPortProb float64) error {
	net, ok := nl.nets[netID]
	if !ok {
		return fmt.Errorf("drive undriven net %d: %w", netID, ErrNetNotFound)
	}
	if net.Driver != nil {
		return fmt.Errorf("%w: net %d is already driven", ErrInvalidInput, netID)
	}
	if net.Type == netlib.ExtIn || net.Type == netlib.ExtClk {
		return fmt.Errorf("%w: net %d is externally driven by definition", ErrInvalidInput, netID)
	}

	sequential := nl.rng.Float64() < seqModProb
	filter := func(m *netlib.ModuleSpec) bool {
		if sequential && m.Combinational {
			return false
		}
		for _, o := range m.Outputs {
			if o.NetType == net.Type {
				return true
			}
		}
		return false
	}
	spec, err := nl.lib.Random(nl.rng, filter)
	if err != nil {
		return fmt.Errorf("drive undriven net %d: %w", netID, err)
	}

	mod, err := nl.instantiate(spec, false)
	if err != nil {
		return fmt.Errorf("drive undriven net %d: %w", netID, err)
	}

	outPort, outBit := outputPortBitOfType(mod, net.Type, seqPortProb, nl.rng)
	if outPort == nil {
		return fmt.Errorf("drive undriven net %d: %w", netID, ErrNoCandidate)
	}
	nl.bindOutput(mod, outPort, outBit, netID)

	cone := nl.ModuleForwardCone(mod.ID, false)

	for _, ps := range spec.Inputs {
		port := mod.Inputs[ps.Name]
		for bit := 0; bit < ps.Width; bit++ {
			t := ps.NetType
			var source Id
			var ferr error
			if t == netlib.Logic && !(sequential && mod.Spec.IsSeqInput(outPort.Name, ps.Name)) {
				source, ferr = nl.randomNet(func(n *Net) bool { return n.Type == t && !cone[n.ID] })
			} else {
				source, ferr = nl.randomNet(func(n *Net) bool { return n.Type == t })
			}
			if ferr != nil {
				return fmt.Errorf("drive undriven net %d: wiring %s.%s[%d]: %w", netID, spec.Name, ps.Name, bit, ferr)
			}
			nl.bindInput(mod, port, bit, source)
		}
	}
	return nil
}

// DriveUndrivenNets drives every currently undriven net, in id order, so
// the result is reproducible for a fixed rng state.
func (nl *Netlist) DriveUndrivenNets(seqModProb, seqPortProb float64) error {
	for _, n := range nl.UndrivenNets() {
		if n.Driver != nil {
			continue // defensive: DriveUndrivenNet only ever drives the net it is given
		}
		if err := nl.DriveUndrivenNet(n.ID, seqModProb, seqPortProb); err != nil {
			return err
		}
	}
	return nil
}

// mergeNet rebinds every sink of target onto source and deletes target.
func (nl *Netlist) mergeNet(target, source Id) {
	tnet, ok := nl.nets[target]
	if !ok {
		return
	}
	snet := nl.nets[source]
	for _, sink := range tnet.Sinks {
		if mod, ok := nl.modules[sink.Module]; ok {
			if port, ok := mod.Inputs[sink.Port]; ok {
				port.Nets[sink.Bit] = source
			}
		}
		snet.Sinks = append(snet.Sinks, sink)
	}
	delete(nl.nets, target)
}

// outputPortBitOfType picks an output port+bit of type t from mod. When
// mod offers more than one matching bit, seqPortProb is the probability of
// preferring one whose port is marked sequential (a SeqConns key) over a
// combinational one.
func outputPortBitOfType(mod *Module, t netlib.NetType, seqPortProb float64, rng *rand.Rand) (*Port, int) {
	type cand struct {
		port *Port
		bit  int
	}
	var seq, comb []cand
	for _, ps := range mod.Spec.Outputs {
		if ps.NetType != t {
			continue
		}
		port, ok := mod.Outputs[ps.Name]
		if !ok {
			continue
		}
		_, isSeq := mod.Spec.SeqConns[ps.Name]
		for bit := 0; bit < len(port.Nets); bit++ {
			if isSeq {
				seq = append(seq, cand{port, bit})
			} else {
				comb = append(comb, cand{port, bit})
			}
		}
	}
	pick := func(pool []cand) (*Port, int) {
		c := pool[rng.Intn(len(pool))]
		return c.port, c.bit
	}
	switch {
	case len(seq) == 0 && len(comb) == 0:
		return nil, 0
	case len(seq) == 0:
		return pick(comb)
	case len(comb) == 0:
		return pick(seq)
	case rng.Float64() < seqPortProb:
		return pick(seq)
	default:
		return pick(comb)
	}
}
