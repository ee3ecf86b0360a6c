package netlist

import (
	"fmt"
	"io"
)

// categoryColor maps a ModuleSpec.Category onto a Graphviz fill color;
// an empty or unrecognised category falls back to white. Purely
// cosmetic — no mutation logic reads Category. Per §4.2.10.
func categoryColor(category string) string {
	switch category {
	case "gate":
		return "lightblue"
	case "flipflop":
		return "lightyellow"
	case "buffer":
		return "lightgray"
	case "io":
		return "lightgreen"
	default:
		return "white"
	}
}

// WriteDot renders the graph as a Graphviz dot animation frame, used by
// the orchestrator's optional <prefix>_iterN.dot artifacts.
func (nl *Netlist) WriteDot(w io.Writer) error {
	width := nl.IdWidth()

	if _, err := fmt.Fprintln(w, "digraph netlist {"); err != nil {
		return err
	}
	fmt.Fprintln(w, "  rankdir=LR;")

	for _, m := range nl.Modules() {
		fmt.Fprintf(w, "  %s [label=%q, style=filled, fillcolor=%s, shape=box];\n",
			dotID(m.ID, "m"), m.Name(width)+"\\n"+m.Spec.Name, categoryColor(m.Spec.Category))
	}
	for _, n := range nl.Nets() {
		fmt.Fprintf(w, "  %s [label=%q, shape=ellipse];\n", dotID(n.ID, "n"), n.Name(width))
	}

	for _, n := range nl.Nets() {
		if n.Driver != nil {
			fmt.Fprintf(w, "  %s -> %s [label=%q];\n", dotID(n.Driver.Module, "m"), dotID(n.ID, "n"), n.Driver.Port)
		}
		for _, sink := range n.Sinks {
			fmt.Fprintf(w, "  %s -> %s [label=%q];\n", dotID(n.ID, "n"), dotID(sink.Module, "m"), sink.Port)
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func dotID(id Id, prefix string) string {
	return fmt.Sprintf("%s%d", prefix, id)
}
