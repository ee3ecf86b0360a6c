package commands

import (
	"math/rand"
	"testing"

	"github.com/splogdes/fuznet/pkg/netlib"
	"github.com/splogdes/fuznet/pkg/netlist"
)

const testLibrary = `
cells:
  - name: and2
    weight: 10
    combinational: true
    ports:
      - {name: a, dir: input, width: 1, net_type: logic}
      - {name: b, dir: input, width: 1, net_type: logic}
      - {name: y, dir: output, width: 1, net_type: logic}
  - name: ibuf
    weight: 3
    combinational: true
    ports:
      - {name: a, dir: input, width: 1, net_type: ext_in}
      - {name: y, dir: output, width: 1, net_type: logic}
`

func TestApplyAddRandomModule(t *testing.T) {
	lib, err := netlib.ParseLibrary([]byte(testLibrary))
	if err != nil {
		t.Fatalf("ParseLibrary: %v", err)
	}
	nl := netlist.New(lib, rand.New(rand.NewSource(1)))
	nl.AddInitialNets(2)

	result, err := Apply(nl, NewAddRandomModule(nil))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := nl.Module(result.ModuleID); !ok {
		t.Errorf("expected module %d to exist", result.ModuleID)
	}
}

func TestApplyUnknownKind(t *testing.T) {
	lib, _ := netlib.ParseLibrary([]byte(testLibrary))
	nl := netlist.New(lib, rand.New(rand.NewSource(1)))
	if _, err := Apply(nl, Command{Kind: "Bogus"}); err == nil {
		t.Errorf("expected error for unknown command kind")
	}
}

func TestApplyAddExternalNet(t *testing.T) {
	lib, _ := netlib.ParseLibrary([]byte(testLibrary))
	nl := netlist.New(lib, rand.New(rand.NewSource(1)))
	result, err := Apply(nl, NewAddExternalNet(2))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(result.NetIDs) != 2 {
		t.Errorf("expected 2 net ids, got %d", len(result.NetIDs))
	}
	for _, id := range result.NetIDs {
		n, ok := nl.Net(id)
		if !ok || n.Type != netlib.ExtIn {
			t.Errorf("expected net %d to be an ext_in net", id)
		}
	}
}
