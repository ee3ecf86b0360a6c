package netlist

import (
	"fmt"
	"io"

	"github.com/splogdes/fuznet/pkg/netlib"
)

// WriteVerilog emits the graph as a flat Verilog module: one input/output
// declaration per boundary port, one instantiation per cell, sorted by
// id for the reproducibility contract of §5. Multi-bit connections use
// {bit_W-1,...,bit_0} concatenation; any unbound bit (no net attached) is
// tied to 1'b0. Per §6 and §4.2.11.
func (nl *Netlist) WriteVerilog(w io.Writer, moduleName string) error {
	width := nl.IdWidth()

	var inputs, outputs []*Net
	for _, n := range nl.Nets() {
		switch n.Type {
		case netlib.ExtIn, netlib.ExtClk:
			inputs = append(inputs, n)
		case netlib.ExtOut:
			outputs = append(outputs, n)
		}
	}

	fmt.Fprintf(w, "module %s (\n", moduleName)
	var ports []string
	for _, n := range inputs {
		ports = append(ports, n.Name(width))
	}
	for _, n := range outputs {
		ports = append(ports, n.Name(width))
	}
	for i, p := range ports {
		sep := ","
		if i == len(ports)-1 {
			sep = ""
		}
		fmt.Fprintf(w, "  %s%s\n", p, sep)
	}
	fmt.Fprintln(w, ");")

	for _, n := range inputs {
		fmt.Fprintf(w, "  input %s;\n", n.Name(width))
	}
	for _, n := range outputs {
		fmt.Fprintf(w, "  output %s;\n", n.Name(width))
	}

	for _, n := range nl.Nets() {
		if n.Type == netlib.ExtIn || n.Type == netlib.ExtClk || n.Type == netlib.ExtOut {
			continue
		}
		fmt.Fprintf(w, "  wire %s;\n", n.Name(width))
	}

	for _, m := range nl.Modules() {
		fmt.Fprintf(w, "  %s %s (\n", m.Spec.Name, m.Name(width))
		var conns []string
		for _, p := range m.InputOrder() {
			conns = append(conns, fmt.Sprintf("    .%s(%s)", p.Name, nl.concat(p, width)))
		}
		for _, p := range m.OutputOrder() {
			conns = append(conns, fmt.Sprintf("    .%s(%s)", p.Name, nl.concat(p, width)))
		}
		for i, c := range conns {
			sep := ","
			if i == len(conns)-1 {
				sep = ""
			}
			fmt.Fprintf(w, "%s%s\n", c, sep)
		}
		fmt.Fprintln(w, "  );")
	}

	_, err := fmt.Fprintln(w, "endmodule")
	return err
}

// concat renders a (possibly multi-bit) port's net binding as a single
// Verilog expression: the bare net name if width 1, else a
// {bit_W-1,...,bit_0} concatenation. An unbound bit (net id 0, never
// allocated) is tied to 1'b0.
func (nl *Netlist) concat(p *Port, width int) string {
	if len(p.Nets) == 1 {
		return nl.bitExpr(p.Nets[0], width)
	}
	expr := "{"
	for i := len(p.Nets) - 1; i >= 0; i-- {
		expr += nl.bitExpr(p.Nets[i], width)
		if i > 0 {
			expr += ","
		}
	}
	return expr + "}"
}

func (nl *Netlist) bitExpr(netID Id, width int) string {
	n, ok := nl.nets[netID]
	if !ok || netID == 0 {
		return "1'b0"
	}
	return n.Name(width)
}
