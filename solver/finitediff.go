package solver

import (
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Func is a vector function F: R^n -> R^m. Implementations must be pure:
// the Jacobian evaluates F concurrently from multiple goroutines.
type Func func(x []float64) []float64

// Jacobian computes J_ij = dF_i/dx_j by finite differences. With central
// differences the truncation error is O(h²), versus O(h) for forward.
//
// Columns are independent and are computed by a pool of workers, one
// contiguous column range each; every worker writes a disjoint part of J,
// so no locking is needed.
func Jacobian(f Func, x []float64, h float64, central bool) *mat.Dense {
	n := len(x)
	f0 := f(x)
	m := len(f0)

	jac := mat.NewDense(m, n, nil)
	eachColumn(n, func(start, end int) {
		xPlus := make([]float64, n)
		xMinus := make([]float64, n)
		for j := start; j < end; j++ {
			copy(xPlus, x)
			if central {
				copy(xMinus, x)
				xPlus[j] += h
				xMinus[j] -= h
				fPlus := f(xPlus)
				fMinus := f(xMinus)
				for i := 0; i < m; i++ {
					jac.Set(i, j, (fPlus[i]-fMinus[i])/(2.0*h))
				}
			} else {
				xPlus[j] += h
				fPlus := f(xPlus)
				for i := 0; i < m; i++ {
					jac.Set(i, j, (fPlus[i]-f0[i])/h)
				}
			}
		}
	})

	return jac
}

// JacobianAdaptive is the central-difference Jacobian with a per-column
// step of baseH * max(1, |x_j|).
func JacobianAdaptive(f Func, x []float64, baseH float64) *mat.Dense {
	n := len(x)
	f0 := f(x)
	m := len(f0)

	jac := mat.NewDense(m, n, nil)
	eachColumn(n, func(start, end int) {
		xPlus := make([]float64, n)
		xMinus := make([]float64, n)
		for j := start; j < end; j++ {
			h := adaptiveStep(x[j], baseH)
			copy(xPlus, x)
			copy(xMinus, x)
			xPlus[j] += h
			xMinus[j] -= h
			fPlus := f(xPlus)
			fMinus := f(xMinus)
			for i := 0; i < m; i++ {
				jac.Set(i, j, (fPlus[i]-fMinus[i])/(2.0*h))
			}
		}
	})

	return jac
}

func adaptiveStep(xj, baseH float64) float64 {
	if abs := math.Abs(xj); abs > 1.0 {
		return baseH * abs
	}
	return baseH
}

// eachColumn splits [0, n) into contiguous ranges, one per worker.
func eachColumn(n int, work func(start, end int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > n {
		numWorkers = n
	}
	if numWorkers <= 1 {
		work(0, n)
		return
	}

	colsPerWorker := (n + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for start := 0; start < n; start += colsPerWorker {
		end := start + colsPerWorker
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			work(start, end)
		}(start, end)
	}
	wg.Wait()
}
