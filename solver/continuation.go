package solver

import "github.com/golang/glog"

// BetaResidual is a residual family parameterized by the rationality
// parameter β, such as the QRE residual.
type BetaResidual interface {
	SetBeta(beta float64)
	Evaluate(x []float64) []float64
}

// BetaSchedule builds the continuation schedule for a target β: a near-zero
// start, then geometric doubling from 0.05 until the target is reached,
// always ending exactly at the target.
func BetaSchedule(targetBeta float64) []float64 {
	schedule := []float64{0.01}
	for beta := 0.05; beta < targetBeta; beta *= 2.0 {
		schedule = append(schedule, beta)
	}
	return append(schedule, targetBeta)
}

// ContinuationResult aggregates the per-β Newton solves.
type ContinuationResult struct {
	X               []float64
	Stages          []Result
	TotalIterations int
	Converged       bool // whether the final stage converged
	FinalResidual   float64
}

// Continuation warm-starts a Newton solve at each β of the schedule from
// the previous β's solution. The low-β problems are nearly linear (the QRE
// at β≈0 is almost uniform), and the solution path is smooth in β, so each
// warm start lands inside the next fixed point's basin of attraction.
type Continuation struct {
	Newton   *Newton
	Schedule []float64
	// OnStage, if set, is invoked with each β before its solve begins.
	OnStage func(beta float64)
}

// Run drives the full schedule starting from x0 and returns the final
// solution. A stage that stops on max iterations is not fatal: its best
// point still seeds the next stage.
func (c *Continuation) Run(res BetaResidual, x0 []float64) (ContinuationResult, error) {
	result := ContinuationResult{X: append([]float64(nil), x0...)}

	for _, beta := range c.Schedule {
		res.SetBeta(beta)
		if c.OnStage != nil {
			c.OnStage(beta)
		}
		glog.V(1).Infof("solving for beta = %.4g", beta)

		stage, err := c.Newton.Solve(res.Evaluate, result.X)
		if err != nil {
			return result, err
		}

		result.X = stage.X
		result.Stages = append(result.Stages, stage)
		result.TotalIterations += stage.Trace.TotalIterations
		result.Converged = stage.Converged
		result.FinalResidual = stage.FinalResidual

		glog.V(1).Infof("beta %.4g: converged=%v in %d iterations, residual = %.3e",
			beta, stage.Converged, stage.Iterations, stage.FinalResidual)
	}

	return result, nil
}
