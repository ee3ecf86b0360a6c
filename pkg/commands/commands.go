// Package commands implements the uniform verb layer the orchestrator
// schedules: a closed set of six mutators over a netlist.Netlist, each
// wrapped in a tagged Command value rather than an open class hierarchy,
// per the design note that the set of verbs never grows at runtime.
package commands

import (
	"fmt"

	"github.com/splogdes/fuznet/pkg/netlib"
	"github.com/splogdes/fuznet/pkg/netlist"
)

// Name identifies one of the six verbs; also the key priorities.<Name>
// settings entries are looked up by (pkg/settings).
type Name string

const (
	AddRandomModule          Name = "AddRandomModule"
	AddExternalNet           Name = "AddExternalNet"
	AddUndriveNet            Name = "AddUndriveNet"
	DriveUndrivenNet         Name = "DriveUndrivenNet"
	DriveUndrivenNets        Name = "DriveUndrivenNets"
	BufferUnconnectedOutputs Name = "BufferUnconnectedOutputs"
)

// All lists every verb in a stable order, used to build the priority
// table and to validate a settings file's priorities section.
var All = []Name{
	AddRandomModule,
	AddExternalNet,
	AddUndriveNet,
	DriveUndrivenNet,
	DriveUndrivenNets,
	BufferUnconnectedOutputs,
}

// Command is one closed tagged variant: Kind selects which of the
// (mutually exclusive) payload fields below applies. Exactly one
// constructor per Kind keeps callers from building an inconsistent
// value directly.
type Command struct {
	Kind Name

	// NetID is the net DriveUndrivenNet gives a driver.
	NetID netlist.Id
	// Filter restricts AddRandomModule's cell draw; nil means any cell.
	Filter netlib.Filter
	// N is how many EXT_IN nets (each with its own EXT_IN->LOGIC buffer)
	// AddExternalNet creates.
	N int
	// SeqModProb/SeqPortProb parameterise DriveUndrivenNet(s), the
	// orchestrator's post-config seq_mod_prob/seq_port_prob knobs.
	SeqModProb, SeqPortProb float64
}

func NewAddRandomModule(filter netlib.Filter) Command {
	return Command{Kind: AddRandomModule, Filter: filter}
}

func NewAddExternalNet(n int) Command {
	return Command{Kind: AddExternalNet, N: n}
}

func NewAddUndriveNet() Command {
	return Command{Kind: AddUndriveNet}
}

func NewDriveUndrivenNet(netID netlist.Id, seqModProb, seqPortProb float64) Command {
	return Command{Kind: DriveUndrivenNet, NetID: netID, SeqModProb: seqModProb, SeqPortProb: seqPortProb}
}

func NewDriveUndrivenNets(seqModProb, seqPortProb float64) Command {
	return Command{Kind: DriveUndrivenNets, SeqModProb: seqModProb, SeqPortProb: seqPortProb}
}

func NewBufferUnconnectedOutputs() Command {
	return Command{Kind: BufferUnconnectedOutputs}
}

// Result records what a command actually did (the module or nets it
// created).
type Result struct {
	Kind         Name
	ModuleID     netlist.Id
	NetID        netlist.Id
	NetIDs       []netlist.Id
	BuffersAdded int
}

// Apply dispatches on Kind and executes the verb against nl, matching the
// teacher's injector.go switch-on-type-then-delegate shape.
func Apply(nl *netlist.Netlist, cmd Command) (Result, error) {
	switch cmd.Kind {
	case AddRandomModule:
		mod, err := nl.AddRandomModule(cmd.Filter)
		if err != nil {
			return Result{}, fmt.Errorf("apply %s: %w", cmd.Kind, err)
		}
		return Result{Kind: cmd.Kind, ModuleID: mod.ID}, nil

	case AddExternalNet:
		ids := make([]netlist.Id, 0, cmd.N)
		for i := 0; i < cmd.N; i++ {
			id, err := nl.AddExternalNet()
			if err != nil {
				return Result{}, fmt.Errorf("apply %s: %w", cmd.Kind, err)
			}
			ids = append(ids, id)
		}
		return Result{Kind: cmd.Kind, NetIDs: ids}, nil

	case AddUndriveNet:
		ids := nl.AddUndrivenNets(1, netlib.Logic)
		return Result{Kind: cmd.Kind, NetID: ids[0]}, nil

	case DriveUndrivenNet:
		if err := nl.DriveUndrivenNet(cmd.NetID, cmd.SeqModProb, cmd.SeqPortProb); err != nil {
			return Result{}, fmt.Errorf("apply %s: %w", cmd.Kind, err)
		}
		return Result{Kind: cmd.Kind, NetID: cmd.NetID}, nil

	case DriveUndrivenNets:
		if err := nl.DriveUndrivenNets(cmd.SeqModProb, cmd.SeqPortProb); err != nil {
			return Result{}, fmt.Errorf("apply %s: %w", cmd.Kind, err)
		}
		return Result{Kind: cmd.Kind}, nil

	case BufferUnconnectedOutputs:
		before := len(nl.Nets())
		if err := nl.BufferUnconnectedOutputs(); err != nil {
			return Result{}, fmt.Errorf("apply %s: %w", cmd.Kind, err)
		}
		after := len(nl.Nets())
		return Result{Kind: cmd.Kind, BuffersAdded: after - before}, nil

	default:
		return Result{}, fmt.Errorf("%w: unknown command kind %q", netlist.ErrInvalidInput, cmd.Kind)
	}
}
