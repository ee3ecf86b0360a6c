package orchestrator

import (
	"math"
	"math/rand"

	"github.com/splogdes/fuznet/pkg/commands"
)

// categoricalSampler draws a command.Name from a fixed discrete
// distribution built from the settings file's per-command priorities,
// the way the teacher's Sampler.weightedChoice walks a cumulative-weight
// table — generalised here from integer to float64 weights since
// priorities are floats.
type categoricalSampler struct {
	names   []commands.Name
	weights []float64
	total   float64
}

func newCategoricalSampler(priorities map[commands.Name]float64) *categoricalSampler {
	s := &categoricalSampler{}
	for _, name := range commands.All {
		w := priorities[name]
		if w <= 0 {
			continue
		}
		s.names = append(s.names, name)
		s.weights = append(s.weights, w)
		s.total += w
	}
	return s
}

// pick draws one command.Name proportional to its configured weight.
// A zero-total distribution (every priority configured to 0 or missing)
// has nothing to draw from; callers must check hasCommands first.
func (s *categoricalSampler) pick(rng *rand.Rand) commands.Name {
	r := rng.Float64() * s.total
	for i, w := range s.weights {
		r -= w
		if r < 0 {
			return s.names[i]
		}
	}
	return s.names[len(s.names)-1]
}

func (s *categoricalSampler) hasCommands() bool {
	return len(s.names) > 0
}

// poisson draws a Poisson(lambda)-distributed integer via Knuth's
// algorithm, the same "parameter-sampling via named distribution" idiom
// as the teacher's Sampler.triangular/logUniform, generalised from those
// continuous shapes to the discrete one the orchestrator's iteration and
// seed counts are specified against.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			break
		}
	}
	return k - 1
}
