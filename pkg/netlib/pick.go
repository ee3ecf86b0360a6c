package netlib

import (
	"fmt"
	"math/rand"
	"sort"
)

// Library is the ordered, validated catalogue of cells a run draws from.
// Ordering is by name rather than YAML file order so that weighted random
// picks are reproducible given a fixed seed, independent of how the file
// happened to list its cells.
type Library struct {
	specs    []*ModuleSpec
	byName   map[string]*ModuleSpec
	Warnings []string
}

func newLibrary(specs []*ModuleSpec) *Library {
	ordered := make([]*ModuleSpec, len(specs))
	copy(ordered, specs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	byName := make(map[string]*ModuleSpec, len(ordered))
	for _, s := range ordered {
		byName[s.Name] = s
	}
	return &Library{specs: ordered, byName: byName}
}

// All returns the name-ordered cell list. Callers must not mutate it.
func (l *Library) All() []*ModuleSpec {
	return l.specs
}

// Get looks up a cell by exact name.
func (l *Library) Get(name string) (*ModuleSpec, error) {
	spec, ok := l.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCell, name)
	}
	return spec, nil
}

// Filter is a predicate over ModuleSpec used to restrict Random's candidate
// set; a nil Filter matches every cell.
type Filter func(*ModuleSpec) bool

// Random performs a weight-proportional draw over the cells matching
// filter (nil matches all). Candidates are walked in name order so that,
// for a given rng state, the draw is a pure function of the library
// content and not of any incidental slice ordering.
func (l *Library) Random(rng *rand.Rand, filter Filter) (*ModuleSpec, error) {
	total := 0
	for _, s := range l.specs {
		if filter != nil && !filter(s) {
			continue
		}
		if s.Weight <= 0 {
			continue
		}
		total += s.Weight
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no cell matches filter", ErrNoCandidate)
	}

	draw := rng.Intn(total)
	for _, s := range l.specs {
		if filter != nil && !filter(s) {
			continue
		}
		if s.Weight <= 0 {
			continue
		}
		if draw < s.Weight {
			return s, nil
		}
		draw -= s.Weight
	}
	// unreachable given total computed the same way above
	return nil, fmt.Errorf("%w: no cell matches filter", ErrNoCandidate)
}

// RandomBuffer draws a weight-proportional single-bit, 1-in/1-out cell
// converting inType on its input to outType on its output.
func (l *Library) RandomBuffer(rng *rand.Rand, inType, outType NetType) (*ModuleSpec, error) {
	return l.Random(rng, func(m *ModuleSpec) bool {
		return m.IsBuffer() && m.Inputs[0].NetType == inType && m.Outputs[0].NetType == outType
	})
}
