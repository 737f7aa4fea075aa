package solver

import (
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	maxRegularizationRetries = 10
	maxLineSearchIters       = 20
)

// Config holds the damped Newton options.
type Config struct {
	Tol           float64 // convergence tolerance on the residual L2 norm
	MaxIters      int     // hard cap on Newton steps
	FDStep        float64 // finite-difference step size
	CentralDiff   bool    // central (vs forward) differences
	LambdaInit    float64 // initial Levenberg regularization
	LambdaMax     float64 // upper bound on the regularization
	LambdaFactor  float64 // up/down factor for the regularization
	ArmijoC       float64 // Armijo slope parameter
	ArmijoRho     float64 // backtracking shrink factor
	UseLineSearch bool    // else take the plain Newton step
	Verbose       bool    // log per-iteration info
}

// DefaultConfig returns the standard solver configuration.
func DefaultConfig() Config {
	return Config{
		Tol:           1e-8,
		MaxIters:      50,
		FDStep:        1e-6,
		CentralDiff:   true,
		LambdaInit:    1e-6,
		LambdaMax:     1e6,
		LambdaFactor:  10.0,
		ArmijoC:       1e-4,
		ArmijoRho:     0.5,
		UseLineSearch: true,
	}
}

// Result of a Newton solve. On non-convergence X holds the best-effort
// final point.
type Result struct {
	X             []float64
	Trace         Trace
	Converged     bool
	Iterations    int
	FinalResidual float64
}

// Newton solves F(x) = 0 for square systems via damped Newton iteration:
// Levenberg-regularized normal equations with an Armijo backtracking line
// search, and a finite-difference Jacobian.
type Newton struct {
	config   Config
	callback IterationCallback
}

func NewNewton(config Config) *Newton {
	return &Newton{config: config}
}

// SetCallback registers a per-iteration callback (for telemetry).
func (nw *Newton) SetCallback(callback IterationCallback) {
	nw.callback = callback
}

func (nw *Newton) Config() Config { return nw.config }

// Solve runs the Newton iteration from x0. It returns an error only for a
// non-square system (an implementation bug in F); running out of
// iterations or a singular Jacobian is reported through the Result.
func (nw *Newton) Solve(f Func, x0 []float64) (Result, error) {
	cfg := nw.config
	result := Result{X: append([]float64(nil), x0...)}
	n := len(result.X)
	lambda := cfg.LambdaInit

	r := f(result.X)
	if len(r) != n {
		return result, errors.Errorf(
			"newton solver requires square system F: R^n -> R^n: input dim %d, output dim %d", n, len(r))
	}
	residualNorm := floats.Norm(r, 2)

	for iter := 0; iter < cfg.MaxIters; iter++ {
		stats := IterationStats{
			Iteration:    iter,
			ResidualNorm: residualNorm,
			Lambda:       lambda,
		}

		if residualNorm < cfg.Tol {
			stats.Converged = true
			stats.Status = "Converged"
			result.Trace.addIteration(stats)
			nw.emit(stats, result.X)

			result.Converged = true
			result.Iterations = iter
			result.FinalResidual = residualNorm
			result.Trace.Success = true
			result.Trace.TerminationReason = "Converged: residual below tolerance"
			return result, nil
		}

		jac := Jacobian(f, result.X, cfg.FDStep, cfg.CentralDiff)
		stats.JacobianCond = conditionNumber(jac)

		// Levenberg-regularized normal equations:
		// (J'J + lambda*I) d = -J'r.
		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		jtr := mat.NewVecDense(n, nil)
		jtr.MulVec(jac.T(), mat.NewVecDense(n, r))
		jtr.ScaleVec(-1, jtr)

		d := mat.NewVecDense(n, nil)
		solved := false
		for regTry := 0; regTry < maxRegularizationRetries && !solved; regTry++ {
			a := mat.NewDense(n, n, nil)
			a.Copy(&jtj)
			for i := 0; i < n; i++ {
				a.Set(i, i, a.At(i, i)+lambda)
			}

			var lu mat.LU
			lu.Factorize(a)
			if err := lu.SolveVecTo(d, false, jtr); err == nil {
				solved = true
			} else {
				lambda *= cfg.LambdaFactor
			}
		}

		if !solved {
			stats.Status = "Failed: Jacobian singular"
			result.Trace.addIteration(stats)
			nw.emit(stats, result.X)

			result.Iterations = iter
			result.FinalResidual = residualNorm
			result.Trace.TerminationReason = "Failed: Jacobian singular"
			return result, nil
		}

		step := d.RawVector().Data
		stats.StepNorm = floats.Norm(step, 2)

		alpha := 1.0
		xNew := make([]float64, n)
		if cfg.UseLineSearch {
			ls := ArmijoBacktrack(f, result.X, step, jac, cfg.ArmijoC, cfg.ArmijoRho, maxLineSearchIters)
			alpha = ls.Alpha
		}
		floats.AddScaledTo(xNew, result.X, alpha, step)
		rNew := f(xNew)
		newResidualNorm := floats.Norm(rNew, 2)

		if cfg.UseLineSearch {
			// The regularization trends with progress: shrink on a
			// residual decrease, grow otherwise, but keep the step.
			if newResidualNorm < residualNorm {
				lambda = math.Max(cfg.LambdaInit, lambda/cfg.LambdaFactor)
			} else {
				lambda = math.Min(cfg.LambdaMax, lambda*cfg.LambdaFactor)
			}
		}

		stats.Alpha = alpha
		stats.Status = "Iteration complete"

		result.X = xNew
		r = rNew
		residualNorm = newResidualNorm

		result.Trace.addIteration(stats)
		nw.emit(stats, result.X)

		if cfg.Verbose {
			glog.Infof("iter %3d: ||r|| = %.6e, ||d|| = %.6e, alpha = %.4f, lambda = %.2e",
				iter, residualNorm, stats.StepNorm, alpha, lambda)
		}
	}

	result.Iterations = cfg.MaxIters
	result.FinalResidual = residualNorm
	result.Trace.TerminationReason = "Max iterations reached"
	return result, nil
}

func (nw *Newton) emit(stats IterationStats, x []float64) {
	if nw.callback != nil {
		nw.callback(stats, x)
	}
}

// conditionNumber estimates cond(J) from the singular value spectrum.
func conditionNumber(jac *mat.Dense) float64 {
	var svd mat.SVD
	if !svd.Factorize(jac, mat.SVDNone) {
		return math.Inf(1)
	}
	values := svd.Values(nil)
	smallest := values[len(values)-1]
	if smallest == 0 {
		return math.Inf(1)
	}
	return values[0] / smallest
}
