package netlist

// ForwardCone walks forward from startNet through every module it
// transitively feeds, returning the set of nets reached (including
// startNet). When stopAtSequential is true, traversal only crosses an
// input->output pair that is combinational for that specific pair (per
// ModuleSpec.SeqConns keyed on the (output, input) names, not on whether
// the module as a whole is ever sequential elsewhere) — this is the
// combinational forward cone used to detect would-be combinational
// cycles. When false, every edge is followed, sequential or not — the
// full forward cone DriveUndrivenNet keeps a new driver's inputs out of.
func (nl *Netlist) ForwardCone(startNet Id, stopAtSequential bool) map[Id]bool {
	visited := map[Id]bool{startNet: true}
	queue := []Id{startNet}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		net, ok := nl.nets[id]
		if !ok {
			continue
		}
		for _, sink := range net.Sinks {
			mod, ok := nl.modules[sink.Module]
			if !ok {
				continue
			}
			for _, outSpec := range mod.Spec.Outputs {
				if stopAtSequential && mod.Spec.IsSeqInput(outSpec.Name, sink.Port) {
					continue
				}
				port, ok := mod.Outputs[outSpec.Name]
				if !ok {
					continue
				}
				for _, outNetID := range port.Nets {
					if visited[outNetID] {
						continue
					}
					visited[outNetID] = true
					queue = append(queue, outNetID)
				}
			}
		}
	}
	return visited
}

// ModuleForwardCone unions ForwardCone over every net a module drives,
// the cone DriveUndrivenNet uses to keep a fresh driver's inputs off the
// nets that driver feeds.
func (nl *Netlist) ModuleForwardCone(moduleID Id, stopAtSequential bool) map[Id]bool {
	mod, ok := nl.modules[moduleID]
	if !ok {
		return nil
	}
	out := map[Id]bool{}
	for _, port := range mod.Outputs {
		for _, netID := range port.Nets {
			for id := range nl.ForwardCone(netID, stopAtSequential) {
				out[id] = true
			}
		}
	}
	return out
}
