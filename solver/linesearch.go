package solver

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LineSearchResult reports the step accepted by a backtracking search.
type LineSearchResult struct {
	Alpha       float64
	Merit       float64
	Evaluations int
	Success     bool
}

// Merit is the scalar merit function phi(x) = 0.5 * ||F(x)||².
func Merit(f Func, x []float64) float64 {
	r := f(x)
	return 0.5 * floats.Dot(r, r)
}

// ArmijoBacktrack searches along d from x for a step alpha satisfying the
// Armijo sufficient-decrease condition
//
//	phi(x + alpha*d) <= phi(x) + c * alpha * grad_phi'*d
//
// where grad_phi'*d = F(x)' J d. Backtracking starts at alpha = 1 and
// shrinks by rho. If d is not a descent direction the search fails with
// alpha = 0; the Newton driver responds by raising its regularization.
func ArmijoBacktrack(f Func, x, d []float64, jac *mat.Dense, c, rho float64, maxIters int) LineSearchResult {
	var result LineSearchResult

	r0 := f(x)
	phi0 := 0.5 * floats.Dot(r0, r0)
	result.Evaluations = 1

	// grad_phi'*d = (J'r)'d = r'(J d)
	jd := mat.NewVecDense(len(r0), nil)
	jd.MulVec(jac, mat.NewVecDense(len(d), d))
	dphi0 := floats.Dot(r0, jd.RawVector().Data)

	if dphi0 >= 0 {
		result.Alpha = 0.0
		result.Merit = phi0
		result.Success = false
		return result
	}

	alpha := 1.0
	xNew := make([]float64, len(x))
	for i := 0; i < maxIters; i++ {
		floats.AddScaledTo(xNew, x, alpha, d)
		rNew := f(xNew)
		phiNew := 0.5 * floats.Dot(rNew, rNew)
		result.Evaluations++

		if phiNew <= phi0+c*alpha*dphi0 {
			result.Alpha = alpha
			result.Merit = phiNew
			result.Success = true
			return result
		}

		alpha *= rho
	}

	floats.AddScaledTo(xNew, x, alpha, d)
	result.Alpha = alpha
	result.Merit = Merit(f, xNew)
	result.Evaluations++
	result.Success = false
	return result
}

// SimpleBacktrack shrinks the step until the merit decreases at all. It is
// a weaker fallback than ArmijoBacktrack.
func SimpleBacktrack(f Func, x, d []float64, rho float64, maxIters int) LineSearchResult {
	var result LineSearchResult

	phi0 := Merit(f, x)
	result.Evaluations = 1

	alpha := 1.0
	xNew := make([]float64, len(x))
	for i := 0; i < maxIters; i++ {
		floats.AddScaledTo(xNew, x, alpha, d)
		phiNew := Merit(f, xNew)
		result.Evaluations++

		if phiNew < phi0 {
			result.Alpha = alpha
			result.Merit = phiNew
			result.Success = true
			return result
		}

		alpha *= rho
	}

	floats.AddScaledTo(xNew, x, alpha, d)
	result.Alpha = alpha
	result.Merit = Merit(f, xNew)
	result.Evaluations++
	result.Success = false
	return result
}
