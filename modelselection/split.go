// Package modelselection provides dataset partitioning utilities with
// scikit-learn compatible semantics.
package modelselection

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/svrkit/pkg/errors"
)

// TrainTestSplit partitions X and y into train and test sets.
//
// The test partition receives ceil(n * testSize) rows, matching
// scikit-learn's train_test_split. The shuffle is driven entirely by seed:
// the same seed and the same input ordering always produce the same
// partition, which is what makes a training request reproducible.
func TrainTestSplit(X mat.Matrix, y *mat.VecDense, testSize float64, seed int64) (XTrain, XTest *mat.Dense, yTrain, yTest *mat.VecDense, err error) {
	n, c := X.Dims()
	if n == 0 || c == 0 {
		return nil, nil, nil, nil, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}
	if y.Len() != n {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "testSize must be in (0, 1)")
	}

	nTest := int(math.Ceil(float64(n) * testSize))
	nTrain := n - nTest
	if nTrain == 0 || nTest == 0 {
		return nil, nil, nil, nil, errors.NewInsufficientDataError("TrainTestSplit", n, 2)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	XTest = mat.NewDense(nTest, c, nil)
	yTest = mat.NewVecDense(nTest, nil)
	XTrain = mat.NewDense(nTrain, c, nil)
	yTrain = mat.NewVecDense(nTrain, nil)

	for i, idx := range perm {
		if i < nTest {
			copyRow(XTest, i, X, idx, c)
			yTest.SetVec(i, y.AtVec(idx))
		} else {
			copyRow(XTrain, i-nTest, X, idx, c)
			yTrain.SetVec(i-nTest, y.AtVec(idx))
		}
	}

	return XTrain, XTest, yTrain, yTest, nil
}

func copyRow(dst *mat.Dense, dstRow int, src mat.Matrix, srcRow, cols int) {
	for j := 0; j < cols; j++ {
		dst.Set(dstRow, j, src.At(srcRow, j))
	}
}
