package reducer

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/splogdes/fuznet/pkg/netlib"
	"github.com/splogdes/fuznet/pkg/netlist"
)

const testLibrary = `
cells:
  - name: and2
    weight: 10
    combinational: true
    category: gate
    ports:
      - {name: a, dir: input, width: 1, net_type: logic}
      - {name: b, dir: input, width: 1, net_type: logic}
      - {name: y, dir: output, width: 1, net_type: logic}
  - name: obuf
    weight: 3
    combinational: true
    category: buffer
    ports:
      - {name: a, dir: input, width: 1, net_type: logic}
      - {name: y, dir: output, width: 1, net_type: ext_out}
  - name: ibuf
    weight: 3
    combinational: true
    category: buffer
    ports:
      - {name: a, dir: input, width: 1, net_type: ext_in}
      - {name: y, dir: output, width: 1, net_type: logic}
`

func mustLib(t *testing.T) *netlib.Library {
	t.Helper()
	lib, err := netlib.ParseLibrary([]byte(testLibrary))
	if err != nil {
		t.Fatalf("ParseLibrary: %v", err)
	}
	return lib
}

// fixture builds a small finalised netlist: two ext_in nets each threaded
// through an ibuf, three randomly drawn cells, every undriven net given a
// driver and every dangling output buffered out.
func fixture(t *testing.T, lib *netlib.Library, seed int64) *netlist.Netlist {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	nl := netlist.New(lib, rng)

	for i := 0; i < 2; i++ {
		if _, err := nl.AddExternalNet(); err != nil {
			t.Fatalf("AddExternalNet: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := nl.AddRandomModule(nil); err != nil {
			t.Fatalf("AddRandomModule: %v", err)
		}
	}
	if err := nl.DriveUndrivenNets(0, 0); err != nil {
		t.Fatalf("DriveUndrivenNets: %v", err)
	}
	if err := nl.BufferUnconnectedOutputs(); err != nil {
		t.Fatalf("BufferUnconnectedOutputs: %v", err)
	}
	if r := nl.Verify(true); !r.Clean {
		t.Fatalf("fixture netlist not finalised-clean: %v", r.Details)
	}
	return nl
}

func writeInitialState(t *testing.T, path string, nl *netlist.Netlist) {
	t.Helper()
	data, err := nl.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	state := &State{New: data}
	if err := state.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func findOutputID(t *testing.T, nl *netlist.Netlist) netlist.Id {
	t.Helper()
	for _, n := range nl.Nets() {
		if n.Type == netlib.ExtOut {
			return n.ID
		}
	}
	t.Fatal("fixture has no ext_out net")
	return 0
}

func TestReduceFirstCallSlicesToRequestedOutput(t *testing.T) {
	lib := mustLib(t)
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	hashPath := filepath.Join(dir, "hashes.txt")

	nl := fixture(t, lib, 1)
	outputID := findOutputID(t, nl)
	writeInitialState(t, statePath, nl)

	result, err := Reduce(lib, rand.New(rand.NewSource(2)), Options{
		InputPath:      statePath,
		OutputPath:     statePath,
		HashLedgerPath: hashPath,
		OutputID:       &outputID,
	})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if result != ResultSuccess {
		t.Fatalf("result = %v, want SUCCESS", result)
	}

	state, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", state.Iterations)
	}

	sliced, err := netlist.LoadNetlist(state.New, lib, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("LoadNetlist(new): %v", err)
	}
	outCount := 0
	for _, n := range sliced.Nets() {
		if n.Type == netlib.ExtOut {
			outCount++
		}
	}
	if outCount != 1 {
		t.Errorf("sliced netlist has %d ext_out nets, want 1", outCount)
	}
}

func TestReduceIterativelyShrinksUntilNoCandidates(t *testing.T) {
	lib := mustLib(t)
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	hashPath := filepath.Join(dir, "hashes.txt")

	nl := fixture(t, lib, 7)
	writeInitialState(t, statePath, nl)

	lastSuccess := false
	var finalResult Result
	for i := 0; i < 50; i++ {
		result, err := Reduce(lib, rand.New(rand.NewSource(int64(100+i))), Options{
			InputPath:      statePath,
			OutputPath:     statePath,
			HashLedgerPath: hashPath,
			LastSuccess:    lastSuccess,
		})
		if err != nil {
			t.Fatalf("Reduce iteration %d: %v", i, err)
		}
		finalResult = result
		if result == ResultSuccess {
			lastSuccess = true
			continue
		}
		break
	}

	if finalResult != ResultAlreadySeen && finalResult != ResultNewHashAdded {
		t.Fatalf("final result = %v, want ALREADY_SEEN or NEW_HASH_ADDED", finalResult)
	}

	state, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.Iterations == 0 {
		t.Error("iterations should have advanced")
	}
}

func TestReduceRevertsBaselineWhenLastAttemptFailed(t *testing.T) {
	lib := mustLib(t)
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	hashPath := filepath.Join(dir, "hashes.txt")

	nl := fixture(t, lib, 11)
	writeInitialState(t, statePath, nl)

	if _, err := Reduce(lib, rand.New(rand.NewSource(20)), Options{
		InputPath:      statePath,
		OutputPath:     statePath,
		HashLedgerPath: hashPath,
		LastSuccess:    false,
	}); err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	afterFirst, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if _, err := Reduce(lib, rand.New(rand.NewSource(21)), Options{
		InputPath:      statePath,
		OutputPath:     statePath,
		HashLedgerPath: hashPath,
		LastSuccess:    false,
	}); err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	afterSecond, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if string(afterSecond.Old) != string(afterFirst.Old) {
		t.Error("old baseline should be unchanged when last attempt was reported as failed")
	}
}

func TestHashLedgerDetectsRepeatedFingerprint(t *testing.T) {
	dir := t.TempDir()
	ledger := NewHashLedger(filepath.Join(dir, "hashes.txt"))

	result, err := ledger.CheckHash(0xdeadbeef)
	if err != nil {
		t.Fatalf("CheckHash: %v", err)
	}
	if result != ResultNewHashAdded {
		t.Fatalf("first CheckHash = %v, want NEW_HASH_ADDED", result)
	}

	result, err = ledger.CheckHash(0xdeadbeef)
	if err != nil {
		t.Fatalf("CheckHash: %v", err)
	}
	if result != ResultAlreadySeen {
		t.Fatalf("second CheckHash = %v, want ALREADY_SEEN", result)
	}
}

func TestLoadStateMissingFileIsEmptyNotError(t *testing.T) {
	state, err := LoadState(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.Iterations != 0 || state.New != nil {
		t.Errorf("expected zero-value state for missing file, got %+v", state)
	}
}

func TestResultExitCodes(t *testing.T) {
	cases := map[Result]int{
		ResultSuccess:      0,
		ResultFailure:      1,
		ResultAlreadySeen:  2,
		ResultNewHashAdded: 3,
	}
	for result, want := range cases {
		if got := result.ExitCode(); got != want {
			t.Errorf("%v.ExitCode() = %d, want %d", result, got, want)
		}
	}
}
