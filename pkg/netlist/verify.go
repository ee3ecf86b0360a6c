package netlist

import (
	"fmt"

	"github.com/splogdes/fuznet/pkg/netlib"
)

// VerificationResult reports whether the graph currently satisfies every
// invariant from §3 and §8's testable properties, in the same
// Clean/Details shape the teacher's namespace verifier returns.
type VerificationResult struct {
	Clean   bool
	Details []string
}

func (r *VerificationResult) fail(format string, args ...interface{}) {
	r.Clean = false
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

// Verify checks the six structural invariants of §3. requireFinalised
// additionally enforces the post-finalisation rule that every Logic/Clk
// net must be driven and terminated (have at least one sink).
func (nl *Netlist) Verify(requireFinalised bool) VerificationResult {
	result := VerificationResult{Clean: true}

	seenIDs := map[Id]bool{}
	for _, n := range nl.Nets() {
		if seenIDs[n.ID] {
			result.fail("net id %d is not unique", n.ID)
		}
		seenIDs[n.ID] = true

		nl.checkDriverConsistency(&result, n)
		nl.checkSinkConsistency(&result, n)
		nl.checkExternalRules(&result, n)

		if requireFinalised {
			switch n.Type {
			case netlib.Logic, netlib.Clk:
				if n.Driver == nil {
					result.fail("net %d (%s) is undriven after finalisation", n.ID, n.Type)
				}
				if len(n.Sinks) == 0 {
					result.fail("net %d (%s) is unterminated after finalisation", n.ID, n.Type)
				}
			}
		}
	}
	for _, m := range nl.Modules() {
		if seenIDs[m.ID] {
			result.fail("module id %d collides with a net id", m.ID)
		}
		seenIDs[m.ID] = true
	}

	return result
}

func (nl *Netlist) checkDriverConsistency(r *VerificationResult, n *Net) {
	if n.Driver == nil {
		return
	}
	mod, ok := nl.modules[n.Driver.Module]
	if !ok {
		r.fail("net %d driver references missing module %d", n.ID, n.Driver.Module)
		return
	}
	port, ok := mod.Outputs[n.Driver.Port]
	if !ok {
		r.fail("net %d driver references missing output port %q on module %d", n.ID, n.Driver.Port, mod.ID)
		return
	}
	if n.Driver.Bit < 0 || n.Driver.Bit >= len(port.Nets) {
		r.fail("net %d driver bit %d out of range for port %q", n.ID, n.Driver.Bit, n.Driver.Port)
		return
	}
	if port.Nets[n.Driver.Bit] != n.ID {
		r.fail("net %d driver back-reference mismatch: module %d port %q bit %d points at net %d",
			n.ID, mod.ID, n.Driver.Port, n.Driver.Bit, port.Nets[n.Driver.Bit])
	}
	if port.NetType != n.Type {
		r.fail("net %d type %s does not match driver port type %s", n.ID, n.Type, port.NetType)
	}
}

func (nl *Netlist) checkSinkConsistency(r *VerificationResult, n *Net) {
	for _, s := range n.Sinks {
		mod, ok := nl.modules[s.Module]
		if !ok {
			r.fail("net %d sink references missing module %d", n.ID, s.Module)
			continue
		}
		port, ok := mod.Inputs[s.Port]
		if !ok {
			r.fail("net %d sink references missing input port %q on module %d", n.ID, s.Port, mod.ID)
			continue
		}
		if s.Bit < 0 || s.Bit >= len(port.Nets) {
			r.fail("net %d sink bit %d out of range for port %q", n.ID, s.Bit, s.Port)
			continue
		}
		if port.Nets[s.Bit] != n.ID {
			r.fail("net %d sink back-reference mismatch: module %d port %q bit %d points at net %d",
				n.ID, mod.ID, s.Port, s.Bit, port.Nets[s.Bit])
		}
		if port.NetType != n.Type {
			r.fail("net %d type %s does not match sink port type %s", n.ID, n.Type, port.NetType)
		}
	}
}

func (nl *Netlist) checkExternalRules(r *VerificationResult, n *Net) {
	switch n.Type {
	case netlib.ExtIn, netlib.ExtClk:
		if n.Driver != nil {
			r.fail("net %d (%s) is externally driven but has an internal driver", n.ID, n.Type)
		}
	case netlib.ExtOut:
		if len(n.Sinks) != 0 {
			r.fail("net %d (ext_out) has internal sinks; external outputs must only be read externally", n.ID)
		}
	}
}
