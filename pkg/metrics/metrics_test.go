package metrics

import "testing"

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.CommandsApplied.WithLabelValues("AddRandomModule").Inc()
	r.Iterations.Inc()
	r.NetCount.Set(4)

	data, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(data) == 0 {
		t.Errorf("expected non-empty snapshot")
	}
}

func TestDefinitionsNonEmpty(t *testing.T) {
	if len(Definitions()) == 0 {
		t.Errorf("expected at least one metric definition")
	}
}
