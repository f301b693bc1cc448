package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1.0, 10.0,
		2.0, 20.0,
		3.0, 30.0,
		4.0, 40.0,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	r, c := scaled.Dims()
	if r != 4 || c != 2 {
		t.Fatalf("FitTransform() dims = (%d, %d), want (4, 2)", r, c)
	}

	// 変換後は各列が平均0、分散1になる
	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			sum += scaled.At(i, j)
		}
		mean := sum / float64(r)
		if math.Abs(mean) > 1e-10 {
			t.Errorf("column %d mean = %v, want 0", j, mean)
		}

		var sumSq float64
		for i := 0; i < r; i++ {
			d := scaled.At(i, j) - mean
			sumSq += d * d
		}
		variance := sumSq / float64(r)
		if math.Abs(variance-1.0) > 1e-10 {
			t.Errorf("column %d variance = %v, want 1", j, variance)
		}
	}
}

func TestStandardScalerRoundTrip(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5.0, 7.0, 9.0})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if math.Abs(restored.At(i, 0)-X.At(i, 0)) > 1e-10 {
			t.Errorf("round trip row %d = %v, want %v", i, restored.At(i, 0), X.At(i, 0))
		}
	}
}

func TestStandardScalerConstantColumn(t *testing.T) {
	// 定数列はスケール1として扱い、ゼロ除算を起こさない
	X := mat.NewDense(3, 1, []float64{2.0, 2.0, 2.0})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		v := scaled.At(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("scaled value at row %d is %v", i, v)
		}
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	scaler := NewStandardScalerDefault()
	_, err := scaler.Transform(mat.NewDense(1, 1, []float64{1.0}))
	if err == nil {
		t.Fatal("Transform() on unfitted scaler should return an error")
	}
}

func TestStandardScalerDimensionMismatch(t *testing.T) {
	scaler := NewStandardScalerDefault()
	if err := scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	_, err := scaler.Transform(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}))
	if err == nil {
		t.Fatal("Transform() with mismatched feature count should return an error")
	}
}
