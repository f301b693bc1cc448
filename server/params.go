package server

import (
	"github.com/YuminosukeSato/svrkit/dataset"
	"github.com/YuminosukeSato/svrkit/pkg/errors"
	"github.com/YuminosukeSato/svrkit/svm"
)

// Training defaults, matching what the frontend pre-fills.
const (
	defaultC        = 1.0
	defaultEpsilon  = 0.1
	defaultKernel   = "rbf"
	defaultTestSize = 0.2
	defaultSeed     = 42
)

// TrainRequest is the decoded `parameters` form field of the training
// endpoint. Pointer fields distinguish "omitted" from zero values so
// defaults only apply to fields the client did not send.
type TrainRequest struct {
	C              *float64   `json:"C"`
	Epsilon        *float64   `json:"epsilon"`
	Gamma          *svm.Gamma `json:"gamma"`
	Kernel         *string    `json:"kernel"`
	TargetColumn   string     `json:"target_column"`
	FeatureColumns []string   `json:"feature_columns"`
	TestSize       *float64   `json:"test_size"`
	RandomState    *int64     `json:"random_state"`
}

// trainParams is a TrainRequest with defaults applied and every field
// validated against the uploaded table.
type trainParams struct {
	C        float64
	Epsilon  float64
	Gamma    svm.Gamma
	Kernel   string
	Target   string
	Features []string
	TestSize float64
	Seed     int64
}

// normalize applies defaults and validates the request against the table.
// Feature selection mirrors select_dtypes: omitted feature_columns mean
// every numeric column except the target, and explicitly chosen non-numeric
// columns are silently filtered out.
func (r *TrainRequest) normalize(table *dataset.Table) (*trainParams, error) {
	p := &trainParams{
		C:        defaultC,
		Epsilon:  defaultEpsilon,
		Gamma:    svm.DefaultGamma(),
		Kernel:   defaultKernel,
		TestSize: defaultTestSize,
		Seed:     defaultSeed,
	}
	if r.C != nil {
		p.C = *r.C
	}
	if r.Epsilon != nil {
		p.Epsilon = *r.Epsilon
	}
	if r.Gamma != nil {
		p.Gamma = *r.Gamma
	}
	if r.Kernel != nil {
		p.Kernel = *r.Kernel
	}
	if r.TestSize != nil {
		p.TestSize = *r.TestSize
	}
	if r.RandomState != nil {
		p.Seed = *r.RandomState
	}

	if p.Kernel != defaultKernel {
		return nil, errors.NewValidationError("kernel", "only rbf is supported", p.Kernel)
	}
	if p.C <= 0 {
		return nil, errors.NewValidationError("C", "must be positive", p.C)
	}
	if p.Epsilon < 0 {
		return nil, errors.NewValidationError("epsilon", "must be non-negative", p.Epsilon)
	}
	if p.TestSize <= 0 || p.TestSize >= 1 {
		return nil, errors.NewValidationError("test_size", "must be strictly between 0 and 1", p.TestSize)
	}

	if r.TargetColumn == "" {
		return nil, errors.NewValidationError("target_column", "required", nil)
	}
	if !table.HasColumn(r.TargetColumn) {
		return nil, errors.NewValidationError("target_column", "column not found", r.TargetColumn)
	}
	if !table.IsNumeric(r.TargetColumn) {
		return nil, errors.NewValidationError("target_column", "column is not numeric", r.TargetColumn)
	}
	p.Target = r.TargetColumn

	if len(r.FeatureColumns) == 0 {
		for _, col := range table.NumericColumns() {
			if col != p.Target {
				p.Features = append(p.Features, col)
			}
		}
	} else {
		for _, col := range r.FeatureColumns {
			if !table.HasColumn(col) {
				return nil, errors.NewValidationError("feature_columns", "column not found", col)
			}
			if col == p.Target {
				return nil, errors.NewValidationError("feature_columns", "feature equals target column", col)
			}
			if table.IsNumeric(col) {
				p.Features = append(p.Features, col)
			}
		}
	}
	if len(p.Features) == 0 {
		return nil, errors.NewValidationError("feature_columns", "no numeric feature columns available", r.FeatureColumns)
	}

	return p, nil
}
