// Package solver implements the equilibrium solvers: a damped Newton method
// with finite-difference Jacobian, Levenberg regularization and Armijo line
// search; a β-continuation driver over the QRE residual; and tabular
// CFR / CFR+.
package solver

// IterationStats records the diagnostics of one Newton iteration.
type IterationStats struct {
	Iteration    int     `json:"iteration"`
	ResidualNorm float64 `json:"residual_norm"`
	StepNorm     float64 `json:"step_norm"`
	Alpha        float64 `json:"alpha"`
	Lambda       float64 `json:"lambda"`
	JacobianCond float64 `json:"jacobian_cond"`
	Converged    bool    `json:"converged"`
	Status       string  `json:"status"`
}

// Trace is the full record of a solver run.
type Trace struct {
	Iterations        []IterationStats `json:"iterations"`
	Success           bool             `json:"success"`
	TotalIterations   int              `json:"total_iterations"`
	FinalResidual     float64          `json:"final_residual"`
	TerminationReason string           `json:"termination_reason"`
}

func (t *Trace) addIteration(stats IterationStats) {
	t.Iterations = append(t.Iterations, stats)
	t.TotalIterations = len(t.Iterations)
	t.FinalResidual = stats.ResidualNorm
}

// IterationCallback receives each iteration's stats and the latest point.
// Callbacks run on the solver goroutine and may perform arbitrary work,
// including blocking I/O.
type IterationCallback func(stats IterationStats, x []float64)
