package netlist

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/splogdes/fuznet/pkg/netlib"
)

// Fingerprint computes a canonical structural hash of the graph: two
// netlists that differ only by how their ids happen to have been
// allocated (e.g. one went through an add/remove sequence the other
// didn't) hash identically, because every net's contribution is derived
// from what drives it and what it's made of, never from its numeric id.
// This is what the reducer's hash ledger (§4.5.2) keys on. Per §4.2.8.
func (nl *Netlist) Fingerprint() uint64 {
	c := &coneHasher{nl: nl, memo: map[Id]uint64{}, visiting: map[Id]bool{}}

	var outHashes, extHashes []uint64
	for _, n := range nl.Nets() {
		switch {
		case n.Type == netlib.ExtOut:
			outHashes = append(outHashes, c.netHash(n.ID))
		case n.Type == netlib.ExtIn || n.Type == netlib.ExtClk:
			extHashes = append(extHashes, c.netHash(n.ID))
		}
	}
	sort.Slice(outHashes, func(i, j int) bool { return outHashes[i] < outHashes[j] })
	sort.Slice(extHashes, func(i, j int) bool { return extHashes[i] < extHashes[j] })

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "outputs:%d", len(outHashes))
	for _, h := range outHashes {
		fmt.Fprintf(&buf, ",%x", h)
	}
	fmt.Fprintf(&buf, "|externals:%d", len(extHashes))
	for _, h := range extHashes {
		fmt.Fprintf(&buf, ",%x", h)
	}
	return xxhash.Sum64(buf.Bytes())
}

type coneHasher struct {
	nl       *Netlist
	memo     map[Id]uint64
	visiting map[Id]bool
}

func (c *coneHasher) netHash(id Id) uint64 {
	if h, ok := c.memo[id]; ok {
		return h
	}
	if c.visiting[id] {
		// Structural cycles should not occur outside a sequential
		// boundary (which this function deliberately doesn't recurse
		// through); this is a defensive terminator, not an expected path.
		return xxhash.Sum64String("cycle")
	}
	c.visiting[id] = true
	defer delete(c.visiting, id)

	net := c.nl.nets[id]
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "type:%s", net.Type)

	if net.Driver == nil {
		fmt.Fprintf(&buf, "|undriven|label:%s", net.Label)
		h := xxhash.Sum64(buf.Bytes())
		c.memo[id] = h
		return h
	}

	mod := c.nl.modules[net.Driver.Module]
	fmt.Fprintf(&buf, "|cell:%s|outport:%s", mod.Spec.Name, net.Driver.Port)

	for _, pname := range sortedParamNames(mod.Params) {
		fmt.Fprintf(&buf, "|param:%s=%d", pname, mod.Params[pname])
	}

	for _, inSpec := range mod.Spec.Inputs {
		port := mod.Inputs[inSpec.Name]
		for bit, inNetID := range port.Nets {
			if mod.Spec.IsSeqInput(net.Driver.Port, inSpec.Name) {
				// A register boundary: record that a registered input
				// exists here without recursing through it, so fingerprints
				// terminate even across feedback loops.
				fmt.Fprintf(&buf, "|reg:%s[%d]", inSpec.Name, bit)
				continue
			}
			fmt.Fprintf(&buf, "|in:%s[%d]=%x", inSpec.Name, bit, c.netHash(inNetID))
		}
	}

	h := xxhash.Sum64(buf.Bytes())
	c.memo[id] = h
	return h
}

func sortedParamNames(params map[string]uint64) []string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
