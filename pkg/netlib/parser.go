package netlib

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rawLibrary mirrors the YAML document shape on disk: a flat list of cell
// entries. Kept separate from ModuleSpec so the exported type never carries
// yaml struct tags or string-typed fields.
type rawLibrary struct {
	Cells []rawCell `yaml:"cells"`
}

type rawPort struct {
	Name    string `yaml:"name"`
	Dir     string `yaml:"dir"`
	Width   int    `yaml:"width"`
	NetType string `yaml:"net_type"`
}

type rawParam struct {
	Name  string `yaml:"name"`
	Width int    `yaml:"width"`
}

type rawCell struct {
	Name          string              `yaml:"name"`
	Ports         []rawPort           `yaml:"ports"`
	Params        []rawParam          `yaml:"params"`
	Combinational bool                `yaml:"combinational"`
	SeqConns      map[string][]string `yaml:"seq_conns"`
	Resources     map[string]int      `yaml:"resources"`
	Weight        int                 `yaml:"weight"`
	Category      string              `yaml:"category"`
}

// LoadLibrary reads and parses a cell-library YAML file into a Library.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading library file %s: %v", ErrIO, path, err)
	}
	return ParseLibrary(data)
}

// ParseLibrary parses cell-library YAML content into a Library, ordering
// the cells by name and running ValidateLibrary before returning it.
func ParseLibrary(data []byte) (*Library, error) {
	var raw rawLibrary
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing library yaml: %v", ErrInvalidInput, err)
	}

	specs := make([]*ModuleSpec, 0, len(raw.Cells))
	for _, c := range raw.Cells {
		spec, err := convertCell(c)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", c.Name, err)
		}
		specs = append(specs, spec)
	}

	lib := newLibrary(specs)
	if warnings, err := ValidateLibrary(lib); err != nil {
		return nil, err
	} else {
		lib.Warnings = warnings
	}
	return lib, nil
}

func convertCell(c rawCell) (*ModuleSpec, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("%w: cell missing name", ErrInvalidInput)
	}

	spec := &ModuleSpec{
		Name:          c.Name,
		Combinational: c.Combinational,
		Resources:     c.Resources,
		Weight:        c.Weight,
		Category:      c.Category,
	}

	for _, p := range c.Ports {
		dir, err := ParsePortDir(p.Dir)
		if err != nil {
			return nil, err
		}
		nt, err := ParseNetType(p.NetType)
		if err != nil {
			return nil, err
		}
		if p.Width <= 0 {
			return nil, fmt.Errorf("%w: port %q has non-positive width", ErrInvalidInput, p.Name)
		}
		ps := PortSpec{Name: p.Name, Dir: dir, Width: p.Width, NetType: nt}
		switch dir {
		case Input:
			spec.Inputs = append(spec.Inputs, ps)
		case Output:
			spec.Outputs = append(spec.Outputs, ps)
		}
	}

	for _, p := range c.Params {
		spec.Params = append(spec.Params, ParamSpec{Name: p.Name, Width: p.Width})
	}

	if len(c.SeqConns) > 0 {
		spec.Combinational = false
		spec.SeqConns = make(map[string]map[string]bool, len(c.SeqConns))
		for out, ins := range c.SeqConns {
			set := make(map[string]bool, len(ins))
			for _, in := range ins {
				set[in] = true
			}
			spec.SeqConns[out] = set
		}
	}

	return spec, nil
}
