package f64

import "testing"

func TestKernels(t *testing.T) {
	x := []float64{1, 2, 3}

	if got := Sum(x); got != 6 {
		t.Errorf("Sum = %v, want 6", got)
	}

	ScalUnitary(2, x)
	if x[2] != 6 {
		t.Errorf("ScalUnitary: x = %v", x)
	}

	dst := make([]float64, 3)
	ScalUnitaryTo(dst, 0.5, x)
	if dst[0] != 1 || dst[2] != 3 {
		t.Errorf("ScalUnitaryTo: dst = %v", dst)
	}

	Add(dst, []float64{1, 1, 1})
	if dst[0] != 2 {
		t.Errorf("Add: dst = %v", dst)
	}

	AddConst(-2, dst)
	if dst[0] != 0 {
		t.Errorf("AddConst: dst = %v", dst)
	}

	y := []float64{1, 1, 1}
	AxpyUnitary(2, []float64{1, 2, 3}, y)
	if y[0] != 3 || y[2] != 7 {
		t.Errorf("AxpyUnitary: y = %v", y)
	}

	if got := Dot([]float64{1, 2}, []float64{3, 4}); got != 11 {
		t.Errorf("Dot = %v, want 11", got)
	}
}
