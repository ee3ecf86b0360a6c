package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/splogdes/fuznet/pkg/netlib"
	"github.com/splogdes/fuznet/pkg/settings"
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
  - name: dff
    weight: 5
    combinational: false
    category: flipflop
    ports:
      - {name: d, dir: input, width: 1, net_type: logic}
      - {name: clk, dir: input, width: 1, net_type: clk}
      - {name: q, dir: output, width: 1, net_type: logic}
    seq_conns:
      q: [d]
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
  - name: cbuf
    weight: 1
    combinational: true
    category: buffer
    ports:
      - {name: a, dir: input, width: 1, net_type: ext_clk}
      - {name: y, dir: output, width: 1, net_type: clk}
`

const testSettings = `
priorities:
  AddRandomModule: 5
  AddExternalNet: 1
  AddUndriveNet: 1
  DriveUndrivenNet: 1
  DriveUndrivenNets: 0
  BufferUnconnectedOutputs: 0
settings:
  max_iter: 50
  stop_iter_lambda: 10
  start_input_lambda: 2
  start_undriven_lambda: 2
  prob_sequential_module: 0.3
  prob_sequential_port: 0.3
`

func testConfig(t *testing.T, seed int64) Config {
	t.Helper()
	lib, err := netlib.ParseLibrary([]byte(testLibrary))
	if err != nil {
		t.Fatalf("ParseLibrary: %v", err)
	}
	set, err := settings.Parse([]byte(testSettings))
	if err != nil {
		t.Fatalf("settings.Parse: %v", err)
	}
	return Config{Library: lib, Settings: set, Seed: seed}
}

func TestRunProducesVerifiedNetlist(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "run")

	o := New(testConfig(t, 42))
	summary, err := o.Run(prefix, RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !summary.Verification.Clean {
		t.Errorf("expected a clean finalised netlist, got: %v", summary.Verification.Details)
	}
	for _, path := range []string{summary.VerilogPath, summary.JSONPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected artifact %s to exist: %v", path, err)
		}
	}
}

func TestRunIsReproducibleForAFixedSeed(t *testing.T) {
	dir := t.TempDir()

	oa := New(testConfig(t, 7))
	sa, err := oa.Run(filepath.Join(dir, "a"), RunOptions{})
	if err != nil {
		t.Fatalf("Run a: %v", err)
	}

	ob := New(testConfig(t, 7))
	sb, err := ob.Run(filepath.Join(dir, "b"), RunOptions{})
	if err != nil {
		t.Fatalf("Run b: %v", err)
	}

	dataA, _ := os.ReadFile(sa.VerilogPath)
	dataB, _ := os.ReadFile(sb.VerilogPath)
	if string(dataA) != string(dataB) {
		t.Errorf("same seed should produce byte-identical verilog output")
	}
}

func TestRunAnimateEmitsDotFrames(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "run")

	o := New(testConfig(t, 1))
	summary, err := o.Run(prefix, RunOptions{Animate: true, JSONStats: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.DotPaths) < 2 {
		t.Errorf("expected at least an iter0 and a final dot frame, got %d", len(summary.DotPaths))
	}
	if _, err := os.Stat(summary.StatsPath); err != nil {
		t.Errorf("expected stats file to exist: %v", err)
	}
}
