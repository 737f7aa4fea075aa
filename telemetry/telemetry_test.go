package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readState(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var state map[string]json.RawMessage
	if err := json.Unmarshal(buf, &state); err != nil {
		t.Fatalf("telemetry file is not valid JSON: %v", err)
	}
	return state
}

func TestSink_InitialState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "solver_output.json")
	if _, err := NewSink(path); err != nil {
		t.Fatal(err)
	}

	state := readState(t, path)
	if string(state["status"]) != `"running"` {
		t.Errorf("status = %s, want running", state["status"])
	}
	if string(state["iteration_count"]) != "0" {
		t.Errorf("iteration_count = %s, want 0", state["iteration_count"])
	}
}

func TestSink_IterationsAndCompletion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver_output.json")
	sink, err := NewSink(path)
	if err != nil {
		t.Fatal(err)
	}

	exploit := 0.25
	ev := -0.05
	for i := 0; i < 2; i++ {
		err := sink.LogIteration(Snapshot{
			Iteration:    i,
			ResidualNorm: 0.5 / float64(i+1),
			Alpha:        1.0,
			Lambda:       1e-6,
			Beta:         0.01,
			Game:         "Kuhn Poker",
			Strategy: map[string]map[string]float64{
				"P0:J:": {"check": 0.5, "bet": 0.5},
			},
			ActionEVs: map[string]map[string]float64{
				"P0:J:": {"check": -0.1, "bet": 0.05},
			},
			Exploitability: &exploit,
			ExpectedValue:  &ev,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	state := readState(t, path)
	if string(state["iteration_count"]) != "2" {
		t.Errorf("iteration_count = %s, want 2", state["iteration_count"])
	}

	var latest Snapshot
	if err := json.Unmarshal(state["latest"], &latest); err != nil {
		t.Fatal(err)
	}
	if latest.Type != "iteration" || latest.Iteration != 1 {
		t.Errorf("latest = %+v", latest)
	}
	if latest.Strategy["P0:J:"]["check"] != 0.5 {
		t.Errorf("latest strategy = %v", latest.Strategy)
	}
	if latest.Exploitability == nil || *latest.Exploitability != 0.25 {
		t.Errorf("latest exploitability = %v", latest.Exploitability)
	}

	if err := sink.Finish(1e-5, 2); err != nil {
		t.Fatal(err)
	}
	state = readState(t, path)
	if string(state["status"]) != `"complete"` {
		t.Errorf("status = %s, want complete", state["status"])
	}
	var completion Completion
	if err := json.Unmarshal(state["latest"], &completion); err != nil {
		t.Fatal(err)
	}
	if completion.Type != "complete" || completion.TotalIterations != 2 || completion.FinalExploitability != 1e-5 {
		t.Errorf("completion = %+v", completion)
	}

	var iterations []json.RawMessage
	if err := json.Unmarshal(state["iterations"], &iterations); err != nil {
		t.Fatal(err)
	}
	if len(iterations) != 2 {
		t.Errorf("iterations has %d entries, want 2", len(iterations))
	}
}

func TestSink_NoTemporaryLeftover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver_output.json")
	sink, err := NewSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.LogIteration(Snapshot{Iteration: 0, Game: "Kuhn Poker"}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}
