package netlist

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/splogdes/fuznet/pkg/netlib"
)

// jsonNet/jsonPort/jsonModule are the wire shapes of §4.2.7's JSON
// snapshot, matching the original emit_json/load_from_json field-for-
// field: a net is {id, name, type} with type the NetType ordinal; a
// module is {id, name, ports, params} with ports keyed by port name and
// params encoded as fixed-width bitstrings rather than raw integers, so
// the on-disk value always carries its declared width with it.
type jsonNet struct {
	ID   Id     `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
}

type jsonPort struct {
	Width   int    `json:"width"`
	NetType int    `json:"net_type"`
	NetIDs  []Id   `json:"net_ids"`
}

type jsonModule struct {
	ID     Id                  `json:"id"`
	Name   string              `json:"name"`
	Ports  map[string]jsonPort `json:"ports"`
	Params map[string]string   `json:"params"`
}

type jsonNetlist struct {
	Nets    []jsonNet    `json:"nets"`
	Modules []jsonModule `json:"modules"`
}

// MarshalJSON implements the §4.2.7 snapshot format: nets in id order,
// each as {id, name, type}; modules in id order, each as {id, name,
// ports, params}, so two runs over identical graphs produce byte-
// identical output.
func (nl *Netlist) MarshalJSON() ([]byte, error) {
	doc := jsonNetlist{}
	idWidth := nl.IdWidth()

	for _, n := range nl.Nets() {
		doc.Nets = append(doc.Nets, jsonNet{
			ID:   n.ID,
			Name: n.Name(idWidth),
			Type: int(n.Type),
		})
	}
	if doc.Nets == nil {
		doc.Nets = []jsonNet{}
	}

	for _, m := range nl.Modules() {
		jm := jsonModule{ID: m.ID, Name: m.Spec.Name, Ports: make(map[string]jsonPort), Params: make(map[string]string)}
		for _, p := range m.InputOrder() {
			jm.Ports[p.Name] = jsonPort{Width: p.Width(), NetType: int(p.NetType), NetIDs: p.Nets}
		}
		for _, p := range m.OutputOrder() {
			jm.Ports[p.Name] = jsonPort{Width: p.Width(), NetType: int(p.NetType), NetIDs: p.Nets}
		}
		for _, ps := range m.Spec.Params {
			jm.Params[ps.Name] = paramToBitstring(m.Params[ps.Name], ps.Width)
		}
		doc.Modules = append(doc.Modules, jm)
	}
	if doc.Modules == nil {
		doc.Modules = []jsonModule{}
	}

	return json.MarshalIndent(doc, "", "  ")
}

// LoadNetlist parses a §4.2.7 JSON snapshot against lib: clears any prior
// state, recreates every net (forcing the id counter beyond any id seen
// in the snapshot, invariant 5), recreates every module without random
// wiring, then binds each port bit to the net named in its net_ids entry
// — adding that module instance as a sink for an input bit, setting it
// as the driver for an output bit. A module naming a cell absent from
// lib fails the load.
func LoadNetlist(data []byte, lib *netlib.Library, rng *rand.Rand) (*Netlist, error) {
	var doc jsonNetlist
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing netlist json: %v", ErrInvalidInput, err)
	}

	nl := &Netlist{
		lib:     lib,
		rng:     rng,
		nextID:  1,
		nets:    make(map[Id]*Net, len(doc.Nets)),
		modules: make(map[Id]*Module, len(doc.Modules)),
	}

	var maxID uint64
	for _, jn := range doc.Nets {
		if uint64(jn.ID) > maxID {
			maxID = uint64(jn.ID)
		}
	}
	for _, jm := range doc.Modules {
		if uint64(jm.ID) > maxID {
			maxID = uint64(jm.ID)
		}
	}
	width := idWidth(maxID)

	for _, jn := range doc.Nets {
		t := netlib.NetType(jn.Type)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: net %d: invalid net type %d", ErrInvalidInput, jn.ID, jn.Type)
		}
		n := &Net{ID: jn.ID, Type: t}
		if jn.Name != derivedName(jn.ID, width) {
			n.Label = jn.Name
		}
		nl.nets[n.ID] = n
		if jn.ID >= nl.nextID {
			nl.nextID = jn.ID + 1
		}
	}

	for _, jm := range doc.Modules {
		spec, err := lib.Get(jm.Name)
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", jm.ID, err)
		}
		mod, err := nl.instantiateAtID(spec, jm.ID)
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", jm.ID, err)
		}
		if jm.ID >= nl.nextID {
			nl.nextID = jm.ID + 1
		}

		for _, ps := range spec.Inputs {
			jp, ok := jm.Ports[ps.Name]
			if !ok {
				return nil, fmt.Errorf("module %d: missing port %q in json", jm.ID, ps.Name)
			}
			port := mod.Inputs[ps.Name]
			for bit, netID := range jp.NetIDs {
				net, ok := nl.nets[netID]
				if !ok {
					return nil, fmt.Errorf("module %d: port %s bit %d references unknown net %d", jm.ID, ps.Name, bit, netID)
				}
				port.Nets[bit] = netID
				net.Sinks = append(net.Sinks, PortBit{Module: mod.ID, Port: ps.Name, Bit: bit})
			}
		}
		for _, ps := range spec.Outputs {
			jp, ok := jm.Ports[ps.Name]
			if !ok {
				return nil, fmt.Errorf("module %d: missing port %q in json", jm.ID, ps.Name)
			}
			port := mod.Outputs[ps.Name]
			for bit, netID := range jp.NetIDs {
				net, ok := nl.nets[netID]
				if !ok {
					return nil, fmt.Errorf("module %d: port %s bit %d references unknown net %d", jm.ID, ps.Name, bit, netID)
				}
				port.Nets[bit] = netID
				net.Driver = &PortBit{Module: mod.ID, Port: ps.Name, Bit: bit}
			}
		}

		for _, ps := range spec.Params {
			bits, ok := jm.Params[ps.Name]
			if !ok {
				continue
			}
			v, err := bitstringToParam(bits)
			if err != nil {
				return nil, fmt.Errorf("module %d: param %s: %w", jm.ID, ps.Name, err)
			}
			mod.Params[ps.Name] = v
		}
	}

	return nl, nil
}

// instantiateAtID is instantiate(spec, false) with the id forced to id
// instead of drawn from the counter, so a loaded snapshot keeps its
// original ids.
func (nl *Netlist) instantiateAtID(spec *netlib.ModuleSpec, id Id) (*Module, error) {
	mod := &Module{
		ID:      id,
		Spec:    spec,
		Params:  make(map[string]uint64, len(spec.Params)),
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
	return mod, nil
}

// paramToBitstring renders value as a fixed-width, MSB-first binary
// string of width bits, the wire encoding of a parameter's random
// bitstring (§4.1's param_values).
func paramToBitstring(value uint64, width int) string {
	if width <= 0 {
		width = 1
	}
	bits := make([]byte, width)
	for i := 0; i < width; i++ {
		if (value>>uint(width-1-i))&1 == 1 {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
	}
	return string(bits)
}

// bitstringToParam parses the wire encoding paramToBitstring produces.
func bitstringToParam(s string) (uint64, error) {
	if len(s) > 64 {
		return 0, fmt.Errorf("bitstring too wide: %d bits", len(s))
	}
	var v uint64
	for _, c := range s {
		v <<= 1
		switch c {
		case '1':
			v |= 1
		case '0':
		default:
			return 0, fmt.Errorf("invalid bitstring character %q", c)
		}
	}
	return v, nil
}
