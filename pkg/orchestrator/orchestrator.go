// Package orchestrator implements the stochastic driver: it seeds a
// fresh netlist, repeatedly samples and applies commands from a
// weighted categorical distribution for a Poisson-drawn iteration
// count bounded by max_iter, forces a finalisation pass, and emits
// artifacts. Single-threaded and synchronous throughout, per the
// reproducibility contract: one *rand.Rand, owned here, threaded
// through every draw.
package orchestrator

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/splogdes/fuznet/pkg/commands"
	"github.com/splogdes/fuznet/pkg/metrics"
	"github.com/splogdes/fuznet/pkg/netlib"
	"github.com/splogdes/fuznet/pkg/netlist"
	"github.com/splogdes/fuznet/pkg/reporting"
	"github.com/splogdes/fuznet/pkg/settings"
)

// Config configures a fresh Orchestrator. Library and Settings are
// required; Logger and Metrics are optional ambient collaborators.
type Config struct {
	Library  *netlib.Library
	Settings *settings.Settings
	Seed     int64
	Logger   *reporting.Logger
	Metrics  *metrics.Registry
}

// Orchestrator drives one generate run: construction seeds the graph
// and builds the categorical command distribution; Run executes the
// bounded mutation loop and emits artifacts.
type Orchestrator struct {
	nl       *netlist.Netlist
	settings *settings.Settings
	rng      *rand.Rand
	sampler  *categoricalSampler
	logger   *reporting.Logger
	metrics  *metrics.Registry
}

// New builds an Orchestrator: opens an empty graph against cfg.Library,
// pushes the post-config seq_mod_prob/seq_port_prob knobs (read by Run
// when it builds the two drive commands), draws the starting undriven
// and external-input net counts from Poisson(start_undriven_lambda) and
// Poisson(start_input_lambda), and builds the weighted categorical
// distribution the run loop samples from. Per §4.4.
func New(cfg Config) *Orchestrator {
	rng := rand.New(rand.NewSource(cfg.Seed))
	nl := netlist.New(cfg.Library, rng)

	logger := cfg.Logger
	if logger == nil {
		logger = reporting.NewLogger(reporting.LoggerConfig{Level: reporting.LogLevelInfo, Format: reporting.LogFormatText})
	}

	o := &Orchestrator{
		nl:       nl,
		settings: cfg.Settings,
		rng:      rng,
		sampler:  newCategoricalSampler(cfg.Settings.Priorities),
		logger:   logger,
		metrics:  cfg.Metrics,
	}

	nl.EnsureClock()

	startUndriven := poisson(rng, cfg.Settings.Knobs.StartUndrivenLambda)
	startInputs := poisson(rng, cfg.Settings.Knobs.StartInputLambda)
	nl.AddUndrivenNets(startUndriven, netlib.Logic)
	for i := 0; i < startInputs; i++ {
		if _, err := nl.AddExternalNet(); err != nil {
			o.logf("failed to seed external net", "error", err.Error())
			break
		}
	}

	o.logf("orchestrator constructed", "start_undriven", startUndriven, "start_inputs", startInputs)
	return o
}

// RunSummary records what a Run call produced, for the caller's
// RunReport and for test assertions.
type RunSummary struct {
	Iterations   int
	CommandsRun  []commands.Name
	VerilogPath  string
	JSONPath     string
	StatsPath    string
	DotPaths     []string
	FinalStats   netlist.Stats
	Verification netlist.VerificationResult
}

// RunOptions controls artifact emission for one Run call.
type RunOptions struct {
	Animate   bool // emit a dot snapshot after every iteration
	JSONStats bool // emit <prefix>_stats.json
}

// Run executes the orchestrator's bounded mutation loop against prefix
// and emits <prefix>.v, <prefix>.json, optional animation frames, and an
// optional stats file. Per §4.4's run(prefix) sequence.
func (o *Orchestrator) Run(prefix string, opts RunOptions) (*RunSummary, error) {
	knobs := o.settings.Knobs
	iters := poisson(o.rng, knobs.StopIterLambda)
	if iters > knobs.MaxIter {
		iters = knobs.MaxIter
	}

	summary := &RunSummary{}

	// add_initial_nets(): one fresh Logic net of seed material per run,
	// distinct from the Poisson-drawn starting pool built at construction.
	o.nl.AddInitialNets(1)

	iterDot := 0
	if opts.Animate {
		path, err := o.writeDotSnapshot(prefix, iterDot)
		if err != nil {
			return nil, err
		}
		summary.DotPaths = append(summary.DotPaths, path)
	}

	if o.sampler.hasCommands() {
		for i := 0; i < iters; i++ {
			name := o.sampler.pick(o.rng)
			cmd := o.buildCommand(name)
			if _, err := commands.Apply(o.nl, cmd); err != nil {
				o.logf("command failed, skipping", "command", string(name), "error", err.Error())
			} else {
				summary.CommandsRun = append(summary.CommandsRun, name)
				if o.metrics != nil {
					o.metrics.CommandsApplied.WithLabelValues(string(name)).Inc()
				}
			}
			if o.metrics != nil {
				o.metrics.Iterations.Inc()
			}

			iterDot++
			if opts.Animate {
				path, err := o.writeDotSnapshot(prefix, iterDot)
				if err != nil {
					return nil, err
				}
				summary.DotPaths = append(summary.DotPaths, path)
			}
		}
	} else {
		o.logf("no command has a positive priority, skipping mutation loop")
	}
	summary.Iterations = iters

	// Finalisation pass.
	if err := o.nl.DriveUndrivenNets(knobs.ProbSequentialModule, knobs.ProbSequentialPort); err != nil {
		return nil, fmt.Errorf("finalisation drive_undriven_nets: %w", err)
	}
	if err := o.nl.BufferUnconnectedOutputs(); err != nil {
		return nil, fmt.Errorf("finalisation buffer_unconnected_outputs: %w", err)
	}

	finalDotPath, err := o.writeDotSnapshot(prefix, iterDot+1)
	if err != nil {
		return nil, err
	}
	summary.DotPaths = append(summary.DotPaths, finalDotPath)

	verilogPath := prefix + ".v"
	vf, err := os.Create(verilogPath)
	if err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", netlib.ErrIO, verilogPath, err)
	}
	err = o.nl.WriteVerilog(vf, moduleNameFromPrefix(prefix))
	vf.Close()
	if err != nil {
		return nil, fmt.Errorf("writing verilog: %w", err)
	}
	summary.VerilogPath = verilogPath

	jsonPath := prefix + ".json"
	if err := writeNetlistJSON(o.nl, jsonPath); err != nil {
		return nil, err
	}
	summary.JSONPath = jsonPath

	if opts.JSONStats {
		statsPath := prefix + "_stats.json"
		if err := o.writeStats(statsPath); err != nil {
			return nil, err
		}
		summary.StatsPath = statsPath
	}

	summary.FinalStats = o.nl.GetStats()
	summary.Verification = o.nl.Verify(true)

	if o.metrics != nil {
		o.metrics.NetCount.Set(float64(summary.FinalStats.NetCount))
		o.metrics.ModuleCount.Set(float64(summary.FinalStats.ModuleCount))
		o.metrics.UndrivenNetCount.Set(float64(summary.FinalStats.UndrivenNetCount))
	}

	return summary, nil
}

// buildCommand constructs the concrete commands.Command for name,
// supplying whatever netlist-dependent arguments the verb needs (an
// undriven net id for DriveUndrivenNet) and pushing the settings-derived
// seq_mod_prob/seq_port_prob into the two drive verbs.
func (o *Orchestrator) buildCommand(name commands.Name) commands.Command {
	knobs := o.settings.Knobs
	switch name {
	case commands.AddRandomModule:
		return commands.NewAddRandomModule(nil)
	case commands.AddExternalNet:
		return commands.NewAddExternalNet(1)
	case commands.AddUndriveNet:
		return commands.NewAddUndriveNet()
	case commands.DriveUndrivenNet:
		undriven := o.nl.UndrivenNets()
		if len(undriven) == 0 {
			return commands.NewAddUndriveNet() // nothing to drive; add an undriven net instead
		}
		netID := undriven[o.rng.Intn(len(undriven))].ID
		return commands.NewDriveUndrivenNet(netID, knobs.ProbSequentialModule, knobs.ProbSequentialPort)
	case commands.DriveUndrivenNets:
		return commands.NewDriveUndrivenNets(knobs.ProbSequentialModule, knobs.ProbSequentialPort)
	case commands.BufferUnconnectedOutputs:
		return commands.NewBufferUnconnectedOutputs()
	default:
		return commands.NewAddUndriveNet()
	}
}

func (o *Orchestrator) writeDotSnapshot(prefix string, iter int) (string, error) {
	path := fmt.Sprintf("%s_iter%d.dot", prefix, iter)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", netlib.ErrIO, path, err)
	}
	defer f.Close()
	if err := o.nl.WriteDot(f); err != nil {
		return "", fmt.Errorf("writing dot snapshot: %w", err)
	}
	return path, nil
}

func (o *Orchestrator) writeStats(path string) error {
	type statsDoc struct {
		Priorities map[commands.Name]float64 `json:"priorities"`
		Knobs      settings.Knobs            `json:"knobs"`
		Stats      netlist.Stats             `json:"stats"`
	}
	doc := statsDoc{
		Priorities: o.settings.Priorities,
		Knobs:      o.settings.Knobs,
		Stats:      o.nl.GetStats(),
	}
	storage, err := reporting.NewStorage(filepath.Dir(path), 0, o.logger)
	if err != nil {
		return fmt.Errorf("creating stats storage: %w", err)
	}
	_, err = storage.SaveJSON(filepath.Base(path), doc)
	return err
}

func (o *Orchestrator) logf(msg string, fields ...interface{}) {
	if o.logger != nil {
		o.logger.Info(msg, fields...)
	}
}

// writeNetlistJSON writes the run's JSON snapshot: { "new": <netlist-json> },
// per §4.4 step 5.
func writeNetlistJSON(nl *netlist.Netlist, path string) error {
	inner, err := nl.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshalling netlist: %w", err)
	}
	doc := struct {
		New json.RawMessage `json:"new"`
	}{New: inner}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", netlib.ErrIO, path, err)
	}
	return nil
}

func moduleNameFromPrefix(prefix string) string {
	base := filepath.Base(prefix)
	if base == "" || base == "." {
		return "top"
	}
	return base
}
