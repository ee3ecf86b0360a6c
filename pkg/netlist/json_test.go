package netlist

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/splogdes/fuznet/pkg/netlib"
)

func TestMarshalJSONWireFormat(t *testing.T) {
	lib := mustLib(t)
	nl := New(lib, rand.New(rand.NewSource(9)))
	clk := nl.EnsureClock()
	mod := instantiateWithFreshInputs(t, nl, mustGet(t, lib, "and2"))

	data, err := nl.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var doc jsonNetlist
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	foundClk := false
	for _, jn := range doc.Nets {
		if jn.ID == clk {
			foundClk = true
			if jn.Type != int(netlib.Clk) {
				t.Errorf("clk net type = %d, want %d (ordinal, not string)", jn.Type, int(netlib.Clk))
			}
			if jn.Name != "clk" {
				t.Errorf("clk net name = %q, want \"clk\"", jn.Name)
			}
		}
	}
	if !foundClk {
		t.Fatalf("clk net %d missing from marshalled nets", clk)
	}

	var jm *jsonModule
	for i := range doc.Modules {
		if doc.Modules[i].ID == mod.ID {
			jm = &doc.Modules[i]
		}
	}
	if jm == nil {
		t.Fatalf("module %d missing from marshalled modules", mod.ID)
	}
	if jm.Name != "and2" {
		t.Errorf("module name = %q, want \"and2\"", jm.Name)
	}
	for _, portName := range []string{"a", "b", "y"} {
		jp, ok := jm.Ports[portName]
		if !ok {
			t.Fatalf("port %q missing from ports map", portName)
		}
		if jp.Width != 1 || len(jp.NetIDs) != 1 {
			t.Errorf("port %q = %+v, want width 1 with one net id", portName, jp)
		}
	}
}

func TestMarshalJSONEncodesParamsAsBitstrings(t *testing.T) {
	lib, err := netlib.ParseLibrary([]byte(`
cells:
  - name: counter
    weight: 1
    combinational: false
    ports:
      - {name: clk, dir: input, width: 1, net_type: clk}
      - {name: q, dir: output, width: 1, net_type: logic}
    params:
      - {name: width, width: 4}
`))
	if err != nil {
		t.Fatalf("ParseLibrary: %v", err)
	}
	nl := New(lib, rand.New(rand.NewSource(1)))
	mod := instantiateWithFreshInputs(t, nl, mustGet(t, lib, "counter"))

	data, err := nl.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var doc jsonNetlist
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var jm *jsonModule
	for i := range doc.Modules {
		if doc.Modules[i].ID == mod.ID {
			jm = &doc.Modules[i]
		}
	}
	if jm == nil {
		t.Fatalf("module %d missing", mod.ID)
	}
	bits, ok := jm.Params["width"]
	if !ok {
		t.Fatalf("params missing \"width\" key")
	}
	if len(bits) != 4 {
		t.Errorf("bitstring length = %d, want 4", len(bits))
	}
	for _, c := range bits {
		if c != '0' && c != '1' {
			t.Errorf("bitstring %q contains non-binary character %q", bits, c)
		}
	}
}

func TestLoadNetlistRoundTrip(t *testing.T) {
	lib := mustLib(t)
	nl := New(lib, rand.New(rand.NewSource(4)))
	nl.EnsureClock()
	and2 := instantiateWithFreshInputs(t, nl, mustGet(t, lib, "and2"))
	obuf := instantiateWithFreshInputs(t, nl, mustGet(t, lib, "obuf"))
	nl.mergeNet(obuf.Inputs["a"].Nets[0], and2.Outputs["y"].Nets[0])
	if err := nl.DriveUndrivenNets(0, 0); err != nil {
		t.Fatalf("DriveUndrivenNets: %v", err)
	}

	before := nl.Fingerprint()
	data, err := nl.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	loaded, err := LoadNetlist(data, lib, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("LoadNetlist: %v", err)
	}

	if loaded.Fingerprint() != before {
		t.Errorf("fingerprint changed across a JSON round trip")
	}

	mod, ok := loaded.Module(and2.ID)
	if !ok {
		t.Fatalf("module %d missing after load", and2.ID)
	}
	for _, p := range mod.Inputs {
		for bit, netID := range p.Nets {
			n, ok := loaded.Net(netID)
			if !ok {
				t.Fatalf("input net %d missing after load", netID)
			}
			found := false
			for _, s := range n.Sinks {
				if s.Module == mod.ID && s.Port == p.Name && s.Bit == bit {
					found = true
				}
			}
			if !found {
				t.Errorf("net %d should list module %d as sink of %s[%d] after load", netID, mod.ID, p.Name, bit)
			}
		}
	}

	// Allocating past the snapshot must never collide with a loaded id.
	extra := loaded.AddInitialNets(1)[0]
	for id := range loaded.nets {
		if id == extra {
			continue
		}
		if extra <= id {
			t.Errorf("newly allocated id %d should exceed every id present in the loaded snapshot (saw %d)", extra, id)
		}
	}
}

func TestLoadNetlistRejectsUnknownCell(t *testing.T) {
	lib := mustLib(t)
	data := []byte(`{"nets":[],"modules":[{"id":1,"name":"nope","ports":{},"params":{}}]}`)
	if _, err := LoadNetlist(data, lib, rand.New(rand.NewSource(1))); err == nil {
		t.Errorf("expected an error loading a module referencing an unknown cell")
	}
}
