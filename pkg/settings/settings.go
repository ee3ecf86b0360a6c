// Package settings parses the run-tuning YAML file: per-command
// priorities and the Poisson/iteration-count knobs the orchestrator
// samples from. Mirrors the teacher's pkg/scenario/parser +
// pkg/scenario/validator split: parse into a raw struct, then validate
// and fill in documented defaults, collecting warnings rather than
// failing on a merely-incomplete file.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/splogdes/fuznet/pkg/commands"
	"github.com/splogdes/fuznet/pkg/netlib"
)

// Knobs holds the "settings:" section's scalar tuning values.
type Knobs struct {
	MaxIter              int     `yaml:"max_iter"`
	StopIterLambda       float64 `yaml:"stop_iter_lambda"`
	StartInputLambda     float64 `yaml:"start_input_lambda"`
	StartUndrivenLambda  float64 `yaml:"start_undriven_lambda"`
	ProbSequentialModule float64 `yaml:"prob_sequential_module"`
	ProbSequentialPort   float64 `yaml:"prob_sequential_port"`
}

// Settings is the parsed, validated settings file: a weighted priority
// per command verb plus the Knobs.
type Settings struct {
	Priorities map[commands.Name]float64
	Knobs      Knobs
	Warnings   []string
}

type rawSettings struct {
	Priorities map[string]float64 `yaml:"priorities"`
	Settings   Knobs              `yaml:"settings"`
}

// DefaultKnobs mirrors the teacher's DefaultConfig() pattern: sane
// values a fresh settings file can be pre-populated with.
func DefaultKnobs() Knobs {
	return Knobs{
		MaxIter:              1000,
		StopIterLambda:       200,
		StartInputLambda:     4,
		StartUndrivenLambda:  4,
		ProbSequentialModule: 0.2,
		ProbSequentialPort:   0.5,
	}
}

// Load reads and validates a settings YAML file at path.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading settings file %s: %v", netlib.ErrIO, path, err)
	}
	return Parse(data)
}

// Parse validates raw settings YAML content. Every command in
// commands.All missing a priorities entry defaults to 0 and produces a
// warning rather than an error, per §6.
func Parse(data []byte) (*Settings, error) {
	var raw rawSettings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing settings yaml: %v", netlib.ErrInvalidInput, err)
	}

	s := &Settings{Priorities: make(map[commands.Name]float64, len(commands.All)), Knobs: raw.Settings}

	for _, name := range commands.All {
		if v, ok := raw.Priorities[string(name)]; ok {
			s.Priorities[name] = v
		} else {
			s.Priorities[name] = 0
			s.Warnings = append(s.Warnings, fmt.Sprintf("priorities.%s missing, defaulting to 0", name))
		}
	}
	for key := range raw.Priorities {
		if !isKnownCommand(key) {
			s.Warnings = append(s.Warnings, fmt.Sprintf("priorities.%s does not name a known command", key))
		}
	}

	if s.Knobs.MaxIter <= 0 {
		return nil, fmt.Errorf("%w: settings.max_iter must be positive", netlib.ErrInvalidInput)
	}

	return s, nil
}

func isKnownCommand(name string) bool {
	for _, n := range commands.All {
		if string(n) == name {
			return true
		}
	}
	return false
}

// TotalWeight sums every configured priority. The orchestrator's
// categorical sampler does not call it; it sums its own positive weights.
func (s *Settings) TotalWeight() float64 {
	total := 0.0
	for _, w := range s.Priorities {
		total += w
	}
	return total
}
