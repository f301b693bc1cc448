package svm

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/svrkit/pkg/errors"
)

// GammaMode discriminates between the named gamma heuristics and a fixed
// numeric value.
type GammaMode int

const (
	// GammaScale resolves to 1 / (nFeatures * Var(X)), scikit-learn's default.
	GammaScale GammaMode = iota
	// GammaAuto resolves to 1 / nFeatures.
	GammaAuto
	// GammaFixed uses Value directly.
	GammaFixed
)

// Gamma is the RBF kernel width parameter as a tagged variant: either a named
// heuristic ("scale", "auto") or a fixed positive value. Keeping the tag
// explicit lets validation happen at decode time instead of deep inside Fit.
type Gamma struct {
	Mode  GammaMode
	Value float64
}

// DefaultGamma returns the scikit-learn default ("scale").
func DefaultGamma() Gamma {
	return Gamma{Mode: GammaScale}
}

// FixedGamma returns a Gamma carrying a fixed numeric value.
func FixedGamma(value float64) Gamma {
	return Gamma{Mode: GammaFixed, Value: value}
}

// UnmarshalJSON accepts either a heuristic name or a number:
// "scale", "auto", or a positive float.
func (g *Gamma) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "scale":
			g.Mode = GammaScale
		case "auto":
			g.Mode = GammaAuto
		default:
			return errors.NewValidationError("gamma", "must be 'scale', 'auto', or a positive number", s)
		}
		g.Value = 0
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.NewValidationError("gamma", "must be 'scale', 'auto', or a positive number", string(data))
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.NewValidationError("gamma", "numeric gamma must be positive and finite", v)
	}
	g.Mode = GammaFixed
	g.Value = v
	return nil
}

// MarshalJSON renders the variant back into its wire form.
func (g Gamma) MarshalJSON() ([]byte, error) {
	switch g.Mode {
	case GammaScale:
		return json.Marshal("scale")
	case GammaAuto:
		return json.Marshal("auto")
	default:
		return json.Marshal(g.Value)
	}
}

// String implements fmt.Stringer for parameter echoing and logs.
func (g Gamma) String() string {
	switch g.Mode {
	case GammaScale:
		return "scale"
	case GammaAuto:
		return "auto"
	default:
		return fmt.Sprintf("%g", g.Value)
	}
}

// Resolve turns the variant into a concrete kernel width for the given
// training matrix.
func (g Gamma) Resolve(X mat.Matrix) (float64, error) {
	_, c := X.Dims()
	if c == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "Gamma.Resolve")
	}

	switch g.Mode {
	case GammaScale:
		v := flatVariance(X)
		if v == 0 {
			// scikit-learn falls back to 1/nFeatures when X has no variance.
			return 1.0 / float64(c), nil
		}
		return 1.0 / (float64(c) * v), nil
	case GammaAuto:
		return 1.0 / float64(c), nil
	case GammaFixed:
		if g.Value <= 0 {
			return 0, errors.NewValidationError("gamma", "numeric gamma must be positive", g.Value)
		}
		return g.Value, nil
	default:
		return 0, errors.NewValueError("Gamma.Resolve", "unknown gamma mode")
	}
}

// flatVariance is the population variance over every entry of X, matching
// numpy's X.var() used by scikit-learn's 'scale' heuristic.
func flatVariance(X mat.Matrix) float64 {
	r, c := X.Dims()
	n := float64(r * c)
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sum += X.At(i, j)
		}
	}
	mean := sum / n

	var sumSq float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := X.At(i, j) - mean
			sumSq += d * d
		}
	}
	return sumSq / n
}

// rbf computes exp(-gamma * ||a - b||^2) for two rows of equal length.
func rbf(a, b []float64, gamma float64) float64 {
	var sq float64
	for k := range a {
		d := a[k] - b[k]
		sq += d * d
	}
	return math.Exp(-gamma * sq)
}

// rbfKernelMatrix precomputes the full training kernel matrix. Exploits
// symmetry; fine for the interactive dataset sizes this service handles.
func rbfKernelMatrix(rows [][]float64, gamma float64) [][]float64 {
	n := len(rows)
	K := make([][]float64, n)
	for i := range K {
		K[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		K[i][i] = 1.0
		for j := i + 1; j < n; j++ {
			v := rbf(rows[i], rows[j], gamma)
			K[i][j] = v
			K[j][i] = v
		}
	}
	return K
}

// matrixRows copies X into a row-slice form used by the solver's hot loops.
func matrixRows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
		rows[i] = row
	}
	return rows
}
