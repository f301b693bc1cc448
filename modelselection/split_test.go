package modelselection

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func makeSequential(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		y.SetVec(i, float64(i)*2)
	}
	return X, y
}

func TestTrainTestSplitSizes(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		testSize  float64
		wantTest  int
		wantTrain int
	}{
		{name: "even split", n: 100, testSize: 0.2, wantTest: 20, wantTrain: 80},
		{name: "ceil on fractional", n: 10, testSize: 0.25, wantTest: 3, wantTrain: 7},
		{name: "small set", n: 5, testSize: 0.2, wantTest: 1, wantTrain: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := makeSequential(tt.n)
			XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, tt.testSize, 42)
			if err != nil {
				t.Fatalf("TrainTestSplit() error = %v", err)
			}

			trainRows, _ := XTrain.Dims()
			testRows, _ := XTest.Dims()
			if trainRows != tt.wantTrain || testRows != tt.wantTest {
				t.Errorf("split sizes = (%d, %d), want (%d, %d)", trainRows, testRows, tt.wantTrain, tt.wantTest)
			}
			if yTrain.Len() != trainRows || yTest.Len() != testRows {
				t.Errorf("target lengths (%d, %d) do not match matrix rows (%d, %d)",
					yTrain.Len(), yTest.Len(), trainRows, testRows)
			}
			if trainRows+testRows != tt.n {
				t.Errorf("train + test = %d, want %d", trainRows+testRows, tt.n)
			}
		})
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	X, y := makeSequential(50)

	_, XTest1, _, yTest1, err := TrainTestSplit(X, y, 0.3, 7)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	_, XTest2, _, yTest2, err := TrainTestSplit(X, y, 0.3, 7)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	if !mat.Equal(XTest1, XTest2) {
		t.Error("same seed produced different test feature partitions")
	}
	if !mat.Equal(yTest1, yTest2) {
		t.Error("same seed produced different test target partitions")
	}
}

func TestTrainTestSplitSeedChangesPartition(t *testing.T) {
	X, y := makeSequential(50)

	_, XTest1, _, _, err := TrainTestSplit(X, y, 0.3, 1)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	_, XTest2, _, _, err := TrainTestSplit(X, y, 0.3, 2)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	if mat.Equal(XTest1, XTest2) {
		t.Error("different seeds produced identical test partitions")
	}
}

func TestTrainTestSplitPreservesPairs(t *testing.T) {
	// yはXの2倍で構築してあるので、行の対応が崩れていれば検出できる
	X, y := makeSequential(30)

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.2, 99)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	trainRows, _ := XTrain.Dims()
	for i := 0; i < trainRows; i++ {
		if yTrain.AtVec(i) != XTrain.At(i, 0)*2 {
			t.Fatalf("train row %d: y = %v, want %v", i, yTrain.AtVec(i), XTrain.At(i, 0)*2)
		}
	}
	testRows, _ := XTest.Dims()
	for i := 0; i < testRows; i++ {
		if yTest.AtVec(i) != XTest.At(i, 0)*2 {
			t.Fatalf("test row %d: y = %v, want %v", i, yTest.AtVec(i), XTest.At(i, 0)*2)
		}
	}
}

func TestTrainTestSplitInvalidArguments(t *testing.T) {
	X, y := makeSequential(10)

	if _, _, _, _, err := TrainTestSplit(X, y, 0.0, 0); err == nil {
		t.Error("testSize 0.0 should return an error")
	}
	if _, _, _, _, err := TrainTestSplit(X, y, 1.0, 0); err == nil {
		t.Error("testSize 1.0 should return an error")
	}

	short := mat.NewVecDense(3, []float64{1, 2, 3})
	if _, _, _, _, err := TrainTestSplit(X, short, 0.2, 0); err == nil {
		t.Error("mismatched y length should return an error")
	}
}
