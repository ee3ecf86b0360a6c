// Package netlib holds the immutable catalogue of cell primitives a netlist
// is built from: NetType/PortDir tags, PortSpec/ParamSpec/ModuleSpec records,
// and the weighted-random pick operations the graph engine draws on.
package netlib

import "fmt"

// NetType tags every net and port bit with its electrical role.
type NetType int

const (
	Logic NetType = iota
	Clk
	ExtIn
	ExtClk
	ExtOut
)

func (t NetType) String() string {
	switch t {
	case Logic:
		return "logic"
	case Clk:
		return "clk"
	case ExtIn:
		return "ext_in"
	case ExtClk:
		return "ext_clk"
	case ExtOut:
		return "ext_out"
	default:
		return fmt.Sprintf("NetType(%d)", int(t))
	}
}

// Valid reports whether t is one of the declared NetType ordinals, the
// check the JSON loader runs against a snapshot's raw integer tag.
func (t NetType) Valid() bool {
	return t >= Logic && t <= ExtOut
}

// ParseNetType maps the cell-library file's type strings onto NetType.
// reset/set/enable are surface aliases for Logic: the library file lets
// authors document intent without the graph engine caring.
func ParseNetType(s string) (NetType, error) {
	switch s {
	case "logic", "reset", "set", "enable":
		return Logic, nil
	case "clk":
		return Clk, nil
	case "ext_in":
		return ExtIn, nil
	case "ext_clk":
		return ExtClk, nil
	case "ext_out":
		return ExtOut, nil
	default:
		return 0, fmt.Errorf("%w: unknown net type %q", ErrInvalidInput, s)
	}
}

// PortDir is the direction of a port from the cell's point of view.
type PortDir int

const (
	Input PortDir = iota
	Output
)

func (d PortDir) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// ParsePortDir maps the cell-library file's direction strings onto PortDir.
func ParsePortDir(s string) (PortDir, error) {
	switch s {
	case "input":
		return Input, nil
	case "output":
		return Output, nil
	default:
		return 0, fmt.Errorf("%w: unknown port direction %q", ErrInvalidInput, s)
	}
}

// PortSpec describes one named, possibly multi-bit, typed pin of a cell.
type PortSpec struct {
	Name    string
	Dir     PortDir
	Width   int
	NetType NetType
}

// ParamSpec describes one named parameter bitstring a cell instance carries.
type ParamSpec struct {
	Name  string
	Width int
}

// ModuleSpec is an immutable catalogue entry: everything the netlist graph
// needs to know to instantiate a cell, nothing about any particular
// instance.
type ModuleSpec struct {
	Name          string
	Inputs        []PortSpec
	Outputs       []PortSpec
	Params        []ParamSpec
	Combinational bool
	// SeqConns maps an output port name to the set of input port names that
	// are registered (latched) into it. Presence of an entry here forces
	// the output to be non-combinational, regardless of Combinational.
	SeqConns  map[string]map[string]bool
	Resources map[string]int
	Weight    int
	// Category is a free-form classification (gate/flipflop/buffer/io)
	// used only for dot-emission styling; no mutation logic reads it.
	Category string
}

// IsSeqInput reports whether input is registered into output on this cell.
func (m *ModuleSpec) IsSeqInput(output, input string) bool {
	ins, ok := m.SeqConns[output]
	if !ok {
		return false
	}
	return ins[input]
}

// OutputCombinational reports whether an output port is combinational:
// true unless the cell is globally non-combinational or the output has an
// entry in SeqConns (the latter implies the former, but callers may care
// about a single output rather than the whole cell).
func (m *ModuleSpec) OutputCombinational(output string) bool {
	if !m.Combinational {
		return false
	}
	_, hasSeq := m.SeqConns[output]
	return !hasSeq
}

// FindInput looks up an input PortSpec by name.
func (m *ModuleSpec) FindInput(name string) (PortSpec, bool) {
	for _, p := range m.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

// FindOutput looks up an output PortSpec by name.
func (m *ModuleSpec) FindOutput(name string) (PortSpec, bool) {
	for _, p := range m.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

// SingleBitOutputOfType reports whether the spec has exactly one output,
// width 1, of the given type — the arity a buffer candidate must have.
func (m *ModuleSpec) SingleBitOutputOfType(t NetType) bool {
	return len(m.Outputs) == 1 && m.Outputs[0].Width == 1 && m.Outputs[0].NetType == t
}

// SingleBitInputOfType reports whether the spec has exactly one input,
// width 1, of the given type.
func (m *ModuleSpec) SingleBitInputOfType(t NetType) bool {
	return len(m.Inputs) == 1 && m.Inputs[0].Width == 1 && m.Inputs[0].NetType == t
}

// IsBuffer reports whether the spec is a 1-in/1-out, single-bit converter —
// the arity every Buffer cell in the library must have.
func (m *ModuleSpec) IsBuffer() bool {
	return len(m.Inputs) == 1 && len(m.Outputs) == 1 &&
		m.Inputs[0].Width == 1 && m.Outputs[0].Width == 1
}
