package netlist

import (
	"fmt"

	"github.com/splogdes/fuznet/pkg/netlib"
)

// BackwardCone walks backward from netID through the module (if any)
// that drives it and, recursively, every net that feeds that module's
// inputs — the set of nets and modules an output actually depends on.
func (nl *Netlist) BackwardCone(netID Id) (nets map[Id]bool, modules map[Id]bool) {
	nets = map[Id]bool{}
	modules = map[Id]bool{}
	queue := []Id{netID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if nets[id] {
			continue
		}
		nets[id] = true

		net, ok := nl.nets[id]
		if !ok || net.Driver == nil {
			continue
		}
		modID := net.Driver.Module
		if modules[modID] {
			continue
		}
		modules[modID] = true

		mod, ok := nl.modules[modID]
		if !ok {
			continue
		}
		for _, port := range mod.Inputs {
			for _, inNetID := range port.Nets {
				if !nets[inNetID] {
					queue = append(queue, inNetID)
				}
			}
		}
	}
	return nets, modules
}

// RemoveOtherNets keeps only the nets and modules reachable backward
// from outputID, plus the net labeled "clk" regardless of reachability
// (a surviving clock is needed even if nothing currently observable
// consumes it, so later mutators can still drive sequential cells off
// it). Everything else is deleted. Per §4.2.3 / the reducer's
// slice-to-one-output phase (§4.5): outputID names the single ExtOut
// net the reduced netlist is sliced down to.
func (nl *Netlist) RemoveOtherNets(outputID Id) error {
	if n, ok := nl.nets[outputID]; !ok || n.Type != netlib.ExtOut {
		return fmt.Errorf("remove other nets: %w: net %d is not an ext_out net", ErrInvalidInput, outputID)
	}

	keepNets, keepModules := nl.BackwardCone(outputID)
	for _, n := range nl.Nets() {
		if n.Label != "clk" {
			continue
		}
		clkNets, clkModules := nl.BackwardCone(n.ID)
		for id := range clkNets {
			keepNets[id] = true
		}
		for id := range clkModules {
			keepModules[id] = true
		}
	}

	for id := range nl.nets {
		if !keepNets[id] {
			delete(nl.nets, id)
		}
	}
	for id := range nl.modules {
		if !keepModules[id] {
			delete(nl.modules, id)
		}
	}

	// Drop now-dangling sinks that pointed at deleted modules/nets.
	for _, n := range nl.nets {
		kept := n.Sinks[:0]
		for _, s := range n.Sinks {
			if keepModules[s.Module] {
				kept = append(kept, s)
			}
		}
		n.Sinks = kept
	}
	return nil
}

// ModuleFilter reports whether a candidate module instance is eligible
// for removal; nil means every module is eligible.
type ModuleFilter func(*Module) bool

// RemoveRandomModule removes one uniformly-chosen module passing filter
// (nil accepts every module). Its output nets lose their driver (become
// undriven, to be picked back up by DriveUndrivenNet) rather than being
// deleted, so sinks downstream of the removed module stay intact; its
// input nets simply drop it as a sink. Per §4.2.4. Returns ErrNoCandidate
// when nothing passes filter — the reducer's iterative mode reads that
// as "nothing else to remove".
func (nl *Netlist) RemoveRandomModule(filter ModuleFilter) (Id, error) {
	var candidates []*Module
	for _, mod := range nl.Modules() {
		if filter == nil || filter(mod) {
			candidates = append(candidates, mod)
		}
	}
	if len(candidates) == 0 {
		return 0, fmt.Errorf("remove random module: %w", ErrNoCandidate)
	}
	mod := candidates[nl.rng.Intn(len(candidates))]
	nl.removeModule(mod.ID)
	return mod.ID, nil
}

func (nl *Netlist) removeModule(modID Id) {
	mod, ok := nl.modules[modID]
	if !ok {
		return
	}
	for _, port := range mod.Outputs {
		for _, netID := range port.Nets {
			if n, ok := nl.nets[netID]; ok {
				n.Driver = nil
			}
		}
	}
	for _, port := range mod.Inputs {
		for _, netID := range port.Nets {
			if n, ok := nl.nets[netID]; ok {
				n.Sinks = removeSink(n.Sinks, modID)
			}
		}
	}
	delete(nl.modules, modID)
}

func removeSink(sinks []PortBit, modID Id) []PortBit {
	kept := sinks[:0]
	for _, s := range sinks {
		if s.Module != modID {
			kept = append(kept, s)
		}
	}
	return kept
}

// BufferUnconnectedOutputs finds every driven net with no sinks at all
// (dead output, not otherwise an ExtOut boundary net) and gives it a
// consumer by instantiating a random buffer converting its type to
// ExtOut, so the value is observable rather than simply dangling. Mirrors
// the original's add_buffer: the buffer is instantiated bare and its
// single input bit is bound directly to n (n keeps every other sink it
// already had, if any), its single output bit to a fresh ExtOut net.
func (nl *Netlist) BufferUnconnectedOutputs() error {
	for _, n := range nl.Nets() {
		if n.Driver == nil || len(n.Sinks) > 0 || n.Type == netlib.ExtOut {
			continue
		}
		buf, err := nl.lib.RandomBuffer(nl.rng, n.Type, netlib.ExtOut)
		if err != nil {
			return fmt.Errorf("buffer unconnected output net %d: %w", n.ID, err)
		}
		mod, err := nl.instantiate(buf, false)
		if err != nil {
			return fmt.Errorf("buffer unconnected output net %d: %w", n.ID, err)
		}
		inPort := mod.Inputs[buf.Inputs[0].Name]
		nl.bindInput(mod, inPort, 0, n.ID)
		outPort := mod.Outputs[buf.Outputs[0].Name]
		nl.bindFreshOutput(mod, outPort, 0, netlib.ExtOut)
	}
	return nil
}

// isExtOutBuffer reports whether mod is a single-bit buffer cell whose
// output is the EXT_OUT boundary type.
func isExtOutBuffer(mod *Module) bool {
	return mod.Spec.IsBuffer() && mod.Spec.Outputs[0].NetType == netlib.ExtOut
}

// RemoveDuplicateOutputs merges redundant output buffering, per §4.2.5:
// when two EXT_OUT buffers are ultimately driven by the same upstream
// port-bit (i.e. read the same source net), they observe an identical
// value, so the second is collapsed onto the first — its EXT_OUT net's
// sinks are rebound onto the kept net and its buffer module is removed.
func (nl *Netlist) RemoveDuplicateOutputs() int {
	removed := 0
	kept := make(map[Id]Id) // source net id -> kept EXT_OUT net id

	for _, mod := range nl.Modules() {
		if !isExtOutBuffer(mod) {
			continue
		}
		sourceID := mod.Inputs[mod.Spec.Inputs[0].Name].Nets[0]
		outID := mod.Outputs[mod.Spec.Outputs[0].Name].Nets[0]

		if keptID, ok := kept[sourceID]; ok {
			nl.mergeOutputNet(outID, keptID)
			nl.removeModule(mod.ID)
			removed++
			continue
		}
		kept[sourceID] = outID
	}
	return removed
}

// mergeOutputNet redirects all sinks currently bound to the duplicate's
// output net (dropID) onto the kept output net (ontoID), then deletes
// dropID. Unlike mergeNet, both nets already have drivers; dropID's
// driver (the module being removed) is discarded along with it.
func (nl *Netlist) mergeOutputNet(dropID, ontoID Id) {
	if dropID == ontoID {
		return
	}
	drop, ok := nl.nets[dropID]
	if !ok {
		return
	}
	onto := nl.nets[ontoID]
	for _, sink := range drop.Sinks {
		if mod, ok := nl.modules[sink.Module]; ok {
			if port, ok := mod.Inputs[sink.Port]; ok {
				port.Nets[sink.Bit] = ontoID
			}
		}
		onto.Sinks = append(onto.Sinks, sink)
	}
	delete(nl.nets, dropID)
}

// isExtInBuffer reports whether mod is a single-bit buffer cell taking an
// EXT_IN input and driving a LOGIC net — the input half of the chain
// RemoveInputOutputChains collapses.
func isExtInBuffer(mod *Module) bool {
	return mod.Spec.IsBuffer() && mod.Spec.Inputs[0].NetType == netlib.ExtIn && mod.Spec.Outputs[0].NetType == netlib.Logic
}

// RemoveInputOutputChains collapses the pure pass-through pattern of
// §4.2.5: an EXT_IN net buffered into a LOGIC net whose sole consumer is
// an output buffer producing an EXT_OUT net. Neither buffer, nor the
// intermediate LOGIC net, nor the terminal EXT_OUT net contribute
// anything once nothing else observes the intermediate net, so the whole
// pair is removed; the EXT_IN net itself survives (other cells may still
// read it).
func (nl *Netlist) RemoveInputOutputChains() int {
	removed := 0
	for _, mod := range nl.Modules() {
		if !isExtInBuffer(mod) {
			continue
		}
		logicNetID := mod.Outputs[mod.Spec.Outputs[0].Name].Nets[0]
		logicNet, ok := nl.nets[logicNetID]
		if !ok || len(logicNet.Sinks) != 1 {
			continue
		}
		obuf, ok := nl.modules[logicNet.Sinks[0].Module]
		if !ok || !isExtOutBuffer(obuf) {
			continue
		}
		extOutNetID := obuf.Outputs[obuf.Spec.Outputs[0].Name].Nets[0]

		nl.removeModule(obuf.ID)
		nl.removeModule(mod.ID)
		delete(nl.nets, logicNetID)
		delete(nl.nets, extOutNetID)
		removed++
	}
	return removed
}
