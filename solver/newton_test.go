package solver

import (
	"math"
	"testing"
)

func TestNewton_LinearSystem(t *testing.T) {
	f := func(x []float64) []float64 {
		return []float64{x[0] - 1, x[1] - 2}
	}

	config := DefaultConfig()
	config.Tol = 1e-10
	config.MaxIters = 10

	result, err := NewNewton(config).Solve(f, []float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Converged {
		t.Fatalf("did not converge: %v", result.Trace.TerminationReason)
	}
	if math.Abs(result.X[0]-1) > 1e-8 || math.Abs(result.X[1]-2) > 1e-8 {
		t.Errorf("x = %v, want (1, 2)", result.X)
	}
}

func TestNewton_RosenbrockSystem(t *testing.T) {
	// F(x, y) = (10(y − x²), 1 − x), root (1, 1).
	f := func(x []float64) []float64 {
		return []float64{10 * (x[1] - x[0]*x[0]), 1 - x[0]}
	}

	config := DefaultConfig()
	config.Tol = 1e-10
	config.MaxIters = 50
	config.UseLineSearch = true

	result, err := NewNewton(config).Solve(f, []float64{-1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Converged {
		t.Fatalf("did not converge: %v", result.Trace.TerminationReason)
	}
	if math.Abs(result.X[0]-1) > 1e-6 || math.Abs(result.X[1]-1) > 1e-6 {
		t.Errorf("x = %v, want (1, 1)", result.X)
	}
}

func TestNewton_ScalarQuadratic(t *testing.T) {
	// x² − 4 has roots ±2; from x=1 the iteration finds the closer
	// positive root.
	f := func(x []float64) []float64 {
		return []float64{x[0]*x[0] - 4}
	}

	config := DefaultConfig()
	config.Tol = 1e-10

	result, err := NewNewton(config).Solve(f, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Converged {
		t.Fatalf("did not converge: %v", result.Trace.TerminationReason)
	}
	if math.Abs(result.X[0]-2) > 1e-8 {
		t.Errorf("x = %v, want 2", result.X[0])
	}
}

func TestNewton_NoRealRoot(t *testing.T) {
	// exp(x) has no root: the solver must stop at the iteration cap with
	// exactly that many iterations recorded.
	f := func(x []float64) []float64 {
		return []float64{math.Exp(x[0])}
	}

	config := DefaultConfig()
	config.MaxIters = 10

	result, err := NewNewton(config).Solve(f, []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	if result.Converged {
		t.Error("converged on a rootless function")
	}
	if result.Iterations != 10 {
		t.Errorf("iterations = %d, want 10", result.Iterations)
	}
	if len(result.Trace.Iterations) != 10 {
		t.Errorf("trace has %d iterations, want 10", len(result.Trace.Iterations))
	}
	if result.Trace.TerminationReason != "Max iterations reached" {
		t.Errorf("termination reason = %q", result.Trace.TerminationReason)
	}
}

func TestNewton_DimensionMismatch(t *testing.T) {
	f := func(x []float64) []float64 {
		return []float64{x[0], x[1], x[0] + x[1]}
	}

	if _, err := NewNewton(DefaultConfig()).Solve(f, []float64{0, 0}); err == nil {
		t.Error("expected error for non-square system")
	}
}

func TestNewton_CallbackSeesEveryIteration(t *testing.T) {
	f := func(x []float64) []float64 {
		return []float64{x[0] - 3}
	}

	config := DefaultConfig()
	config.Tol = 1e-12

	newton := NewNewton(config)
	var calls []IterationStats
	newton.SetCallback(func(stats IterationStats, x []float64) {
		calls = append(calls, stats)
		if len(x) != 1 {
			t.Errorf("callback x has dim %d", len(x))
		}
	})

	result, err := newton.Solve(f, []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != len(result.Trace.Iterations) {
		t.Errorf("callback fired %d times, trace has %d entries", len(calls), len(result.Trace.Iterations))
	}
	last := calls[len(calls)-1]
	if !last.Converged || last.Status != "Converged" {
		t.Errorf("final callback stats = %+v, want converged", last)
	}
}

func TestNewton_WithoutLineSearch(t *testing.T) {
	f := func(x []float64) []float64 {
		return []float64{x[0] - 1, x[1] + 4}
	}

	config := DefaultConfig()
	config.UseLineSearch = false
	config.Tol = 1e-10

	result, err := NewNewton(config).Solve(f, []float64{10, 10})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Converged {
		t.Fatalf("did not converge: %v", result.Trace.TerminationReason)
	}
	if math.Abs(result.X[0]-1) > 1e-8 || math.Abs(result.X[1]+4) > 1e-8 {
		t.Errorf("x = %v, want (1, -4)", result.X)
	}
}
