// Package server exposes the training service over HTTP: schema inspection
// of uploaded files, SVR training with diagnostics, and liveness.
package server

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/svrkit/dataset"
	"github.com/YuminosukeSato/svrkit/diagnostics"
	"github.com/YuminosukeSato/svrkit/metrics"
	"github.com/YuminosukeSato/svrkit/modelselection"
	"github.com/YuminosukeSato/svrkit/pkg/errors"
	"github.com/YuminosukeSato/svrkit/pkg/log"
	"github.com/YuminosukeSato/svrkit/preprocessing"
	"github.com/YuminosukeSato/svrkit/svm"
)

// Service runs the two dataset operations behind the endpoints. It holds no
// per-request state; a table lives only for the request that uploaded it.
type Service struct {
	renderer diagnostics.Renderer
}

func NewService() *Service {
	return &Service{renderer: diagnostics.NewPNGRenderer()}
}

// Inspect summarizes an uploaded table for the column-selection step.
func (s *Service) Inspect(table *dataset.Table) *UploadSummary {
	return &UploadSummary{
		Filename:      table.Filename(),
		Shape:         [2]int{table.Rows(), table.Cols()},
		Columns:       table.Columns(),
		DTypes:        table.DTypes(),
		MissingValues: table.MissingCounts(),
		Preview:       table.Preview(dataset.PreviewRows),
	}
}

// Train runs the full pipeline: validate → drop missing rows → split →
// scale → fit → score → plot. Any failure aborts the request; there is no
// partial result.
func (s *Service) Train(table *dataset.Table, req *TrainRequest) (*TrainResult, error) {
	started := time.Now()

	p, err := req.normalize(table)
	if err != nil {
		return nil, err
	}

	X, y, dropped, err := table.NumericMatrix(p.Features, p.Target)
	if err != nil {
		return nil, err
	}
	total, _ := X.Dims()

	XTrain, XTest, yTrain, yTest, err := modelselection.TrainTestSplit(X, y, p.TestSize, p.Seed)
	if err != nil {
		return nil, err
	}
	nTrain, _ := XTrain.Dims()
	nTest, _ := XTest.Dims()

	scaler := preprocessing.NewStandardScalerDefault()
	XTrainScaled, err := scaler.FitTransform(XTrain)
	if err != nil {
		return nil, err
	}
	XTestScaled, err := scaler.Transform(XTest)
	if err != nil {
		return nil, err
	}

	svr := svm.NewSVR()
	svr.C = p.C
	svr.Epsilon = p.Epsilon
	svr.Gamma = p.Gamma

	// ソルバのパニックは InternalError として回収する
	if err := errors.SafeExecute("server.Train", func() error {
		return svr.Fit(XTrainScaled, yTrain)
	}); err != nil {
		return nil, err
	}

	predTrain, err := svr.PredictVec(XTrainScaled)
	if err != nil {
		return nil, err
	}
	predTest, err := svr.PredictVec(XTestScaled)
	if err != nil {
		return nil, err
	}

	m, err := scoreBoth(yTrain, predTrain, yTest, predTest)
	if err != nil {
		return nil, err
	}

	actual, predicted := vecSlice(yTest), vecSlice(predTest)
	avpPlot, err := diagnostics.ActualVsPredicted(s.renderer, actual, predicted, m.TestR2)
	if err != nil {
		return nil, err
	}
	resPlot, err := diagnostics.Residuals(s.renderer, actual, predicted)
	if err != nil {
		return nil, err
	}

	slog.Info("svr training complete",
		slog.String(log.FilenameKey, table.Filename()),
		slog.String(log.TargetKey, p.Target),
		slog.Any(log.FeaturesUsedKey, p.Features),
		slog.Int64(log.SeedKey, p.Seed),
		slog.Int(log.DroppedRowsKey, dropped),
		slog.Int(log.TrainSamplesKey, nTrain),
		slog.Int(log.TestSamplesKey, nTest),
		slog.Float64(log.TestR2Key, m.TestR2),
		slog.Float64(log.TestMSEKey, m.TestMSE),
		slog.Int64(log.DurationMsKey, time.Since(started).Milliseconds()),
	)

	return &TrainResult{
		ModelParameters: ModelParameters{
			Kernel:         p.Kernel,
			C:              p.C,
			Epsilon:        p.Epsilon,
			Gamma:          p.Gamma,
			GammaValue:     svr.ResolvedGamma(),
			TargetColumn:   p.Target,
			FeatureColumns: p.Features,
			TestSize:       p.TestSize,
			RandomState:    p.Seed,
			NSupport:       svr.NSupport(),
		},
		Metrics: *m,
		DataInfo: DataInfo{
			TotalSamples:    total,
			TrainingSamples: nTrain,
			TestSamples:     nTest,
			DroppedRows:     dropped,
			Features:        len(p.Features),
			FeatureNames:    p.Features,
		},
		Plots: Plots{
			ActualVsPredicted: avpPlot,
			Residuals:         resPlot,
		},
	}, nil
}

func scoreBoth(yTrain, predTrain, yTest, predTest *mat.VecDense) (*SVRMetrics, error) {
	m := &SVRMetrics{}
	var err error
	if m.TrainMSE, err = metrics.MSE(yTrain, predTrain); err != nil {
		return nil, err
	}
	if m.TestMSE, err = metrics.MSE(yTest, predTest); err != nil {
		return nil, err
	}
	if m.TrainR2, err = metrics.R2Score(yTrain, predTrain); err != nil {
		return nil, err
	}
	if m.TestR2, err = metrics.R2Score(yTest, predTest); err != nil {
		return nil, err
	}
	if m.TrainMAE, err = metrics.MAE(yTrain, predTrain); err != nil {
		return nil, err
	}
	if m.TestMAE, err = metrics.MAE(yTest, predTest); err != nil {
		return nil, err
	}
	return m, nil
}

func vecSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
