// Package reducer implements the delta-debugging reducer: a single-shot
// operation invoked repeatedly by an outer harness, each call reading a
// persisted state document, attempting one simplification, and writing
// the document back out alongside a Result the harness feeds back in as
// --last-success on the next call. Per §4.5.
package reducer

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/splogdes/fuznet/pkg/netlib"
	"github.com/splogdes/fuznet/pkg/netlist"
)

// Options configures one Reduce call, mirroring the reduce CLI's flag
// surface: InputPath/OutputPath are the state document read from and
// written to (the same path across successive invocations so the state
// persists), HashLedgerPath is the ledger file, OutputID is -r/--keep-only
// (nil when unset), LastSuccess is --last-success.
type Options struct {
	InputPath      string
	OutputPath     string
	HashLedgerPath string
	OutputID       *netlist.Id
	LastSuccess    bool
}

// Reduce runs one reduce() call per §4.5: increments the iteration
// count, on the first call copies new into old, then either slices to a
// single requested output (§4.5 ¶2, first iteration only) or runs one
// step of the iterative simplify/rollback loop (§4.5.1).
func Reduce(lib *netlib.Library, rng *rand.Rand, opts Options) (Result, error) {
	state, err := LoadState(opts.InputPath)
	if err != nil {
		return ResultFailure, err
	}

	firstIteration := state.Iterations == 0
	state.Iterations++
	if firstIteration {
		state.Old = state.New
	}

	if opts.OutputID != nil && firstIteration {
		return sliceToOneOutput(lib, rng, state, *opts.OutputID, opts.OutputPath)
	}

	return reduceIteratively(lib, rng, state, opts)
}

// sliceToOneOutput implements §4.5's "slice to one output" phase: load
// new, call remove_other_nets(output_id), serialise back into new.
func sliceToOneOutput(lib *netlib.Library, rng *rand.Rand, state *State, outputID netlist.Id, outputPath string) (Result, error) {
	nl, err := netlist.LoadNetlist(state.New, lib, rng)
	if err != nil {
		return ResultFailure, fmt.Errorf("slice to one output: %w", err)
	}
	if err := nl.RemoveOtherNets(outputID); err != nil {
		return ResultFailure, fmt.Errorf("slice to one output: %w", err)
	}
	data, err := nl.MarshalJSON()
	if err != nil {
		return ResultFailure, fmt.Errorf("slice to one output: %w", err)
	}
	state.New = data

	if err := state.Save(outputPath); err != nil {
		return ResultFailure, err
	}
	return ResultSuccess, nil
}

// reduceIteratively implements §4.5.1.
func reduceIteratively(lib *netlib.Library, rng *rand.Rand, state *State, opts Options) (Result, error) {
	var baseline []byte
	if opts.LastSuccess {
		state.Old = state.New
		baseline = state.New
	} else {
		baseline = state.Old
	}

	nl, err := netlist.LoadNetlist(baseline, lib, rng)
	if err != nil {
		return ResultFailure, fmt.Errorf("reduce iteratively: %w", err)
	}

	tried := state.triedSet()
	filter := func(m *netlist.Module) bool {
		return !tried[m.ID] && !m.Spec.IsBuffer()
	}

	removedID, err := nl.RemoveRandomModule(filter)
	if errors.Is(err, netlist.ErrNoCandidate) {
		fp := nl.Fingerprint()
		ledger := NewHashLedger(opts.HashLedgerPath)
		result, err := ledger.CheckHash(fp)
		if err != nil {
			return ResultFailure, err
		}
		if err := state.Save(opts.OutputPath); err != nil {
			return ResultFailure, err
		}
		return result, nil
	}
	if err != nil {
		return ResultFailure, fmt.Errorf("reduce iteratively: %w", err)
	}

	state.TriedToRemoveNetIDs = append(state.TriedToRemoveNetIDs, removedID)
	nl.RemoveDuplicateOutputs()
	nl.RemoveInputOutputChains()

	data, err := nl.MarshalJSON()
	if err != nil {
		return ResultFailure, fmt.Errorf("reduce iteratively: %w", err)
	}
	state.New = data

	if err := state.Save(opts.OutputPath); err != nil {
		return ResultFailure, err
	}
	return ResultSuccess, nil
}
