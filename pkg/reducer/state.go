package reducer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/splogdes/fuznet/pkg/netlib"
	"github.com/splogdes/fuznet/pkg/netlist"
)

// State is the §4.5 persisted state document: the candidate from the
// latest step (New), the last-known-good base (Old), the running
// iteration count, and the set of module ids already attempted for
// removal this reduction.
type State struct {
	Iterations          int             `json:"iterations"`
	New                 json.RawMessage `json:"new"`
	Old                 json.RawMessage `json:"old"`
	TriedToRemoveNetIDs []netlist.Id    `json:"tried_to_remove_net_ids"`
}

// LoadState reads the state document at path. A missing file is not an
// error: an empty State (Iterations == 0) is returned, matching "first
// invocation of a fresh reduction".
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading state file %s: %v", netlib.ErrIO, path, err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parsing state file %s: %v", netlib.ErrInvalidInput, path, err)
	}
	return &s, nil
}

// Save writes s to path as JSON.
func (s *State) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing state file %s: %v", netlib.ErrIO, path, err)
	}
	return nil
}

// triedSet renders TriedToRemoveNetIDs as a membership set for the
// filter remove_random_module is called with.
func (s *State) triedSet() map[netlist.Id]bool {
	set := make(map[netlist.Id]bool, len(s.TriedToRemoveNetIDs))
	for _, id := range s.TriedToRemoveNetIDs {
		set[id] = true
	}
	return set
}
