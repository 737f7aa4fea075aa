// Package telemetry writes solver progress as JSON to a file. Writes are
// atomic (temp file + rename) so a concurrent reader, such as the browser
// visualization polling the file, always sees a consistent snapshot.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Snapshot is the per-iteration telemetry record.
type Snapshot struct {
	Type           string                        `json:"type"`
	Iteration      int                           `json:"iteration"`
	ResidualNorm   float64                       `json:"residual_norm"`
	StepNorm       float64                       `json:"step_norm"`
	Alpha          float64                       `json:"alpha"`
	Lambda         float64                       `json:"lambda"`
	Beta           float64                       `json:"beta"`
	Game           string                        `json:"game"`
	Strategy       map[string]map[string]float64 `json:"strategy"`
	ActionEVs      map[string]map[string]float64 `json:"action_evs,omitempty"`
	Exploitability *float64                      `json:"exploitability,omitempty"`
	ExpectedValue  *float64                      `json:"expected_value,omitempty"`
}

// Completion replaces the latest snapshot when the solver finishes.
type Completion struct {
	Type                string  `json:"type"`
	FinalExploitability float64 `json:"final_exploitability"`
	TotalIterations     int     `json:"total_iterations"`
	Status              string  `json:"status"`
}

type fileState struct {
	Status         string            `json:"status"`
	IterationCount int               `json:"iteration_count"`
	Iterations     []json.RawMessage `json:"iterations"`
	Latest         json.RawMessage   `json:"latest"`
}

// Sink accumulates snapshots and rewrites the output file after each one.
type Sink struct {
	path     string
	history  []json.RawMessage
	latest   json.RawMessage
	finished bool
}

// NewSink creates the sink and writes the initial empty state.
func NewSink(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "creating telemetry directory")
		}
	}

	s := &Sink{
		path:   path,
		latest: json.RawMessage("null"),
	}
	if err := s.write(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) Path() string { return s.path }

// LogIteration appends one snapshot and rewrites the file.
func (s *Sink) LogIteration(snap Snapshot) error {
	snap.Type = "iteration"
	buf, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshaling telemetry snapshot")
	}

	s.history = append(s.history, buf)
	s.latest = buf
	return s.write()
}

// Finish marks the run complete.
func (s *Sink) Finish(finalExploitability float64, totalIterations int) error {
	completion := Completion{
		Type:                "complete",
		FinalExploitability: finalExploitability,
		TotalIterations:     totalIterations,
		Status:              "done",
	}
	buf, err := json.Marshal(completion)
	if err != nil {
		return errors.Wrap(err, "marshaling telemetry completion")
	}

	s.latest = buf
	s.finished = true
	return s.write()
}

func (s *Sink) write() error {
	status := "running"
	if s.finished {
		status = "complete"
	}

	iterations := s.history
	if iterations == nil {
		iterations = []json.RawMessage{}
	}

	buf, err := json.MarshalIndent(fileState{
		Status:         status,
		IterationCount: len(s.history),
		Iterations:     iterations,
		Latest:         s.latest,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling telemetry state")
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, buf, 0644); err != nil {
		return errors.Wrap(err, "writing telemetry file")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return errors.Wrap(err, "renaming telemetry file")
	}
	return nil
}
