package server

import (
	"github.com/YuminosukeSato/svrkit/svm"
)

// AppName and Version are reported by the health endpoint.
const (
	AppName = "svrkit"
	Version = "0.1.0"
)

// Response is the envelope every JSON endpoint answers with. Data carries
// the endpoint payload on success; Error carries the failure message the
// frontend surfaces as-is.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func fail(message string) Response {
	return Response{Success: false, Error: message}
}

// UploadSummary is the schema view of an uploaded file.
type UploadSummary struct {
	Filename      string                   `json:"filename"`
	Shape         [2]int                   `json:"shape"`
	Columns       []string                 `json:"columns"`
	DTypes        map[string]string        `json:"dtypes"`
	MissingValues map[string]int           `json:"missing_values"`
	Preview       []map[string]interface{} `json:"preview"`
}

// ModelParameters echoes the hyperparameters a model was actually trained
// with, defaults filled in and feature columns reduced to the numeric ones
// that were used.
type ModelParameters struct {
	Kernel         string    `json:"kernel"`
	C              float64   `json:"C"`
	Epsilon        float64   `json:"epsilon"`
	Gamma          svm.Gamma `json:"gamma"`
	GammaValue     float64   `json:"gamma_value"`
	TargetColumn   string    `json:"target_column"`
	FeatureColumns []string  `json:"feature_columns"`
	TestSize       float64   `json:"test_size"`
	RandomState    int64     `json:"random_state"`
	NSupport       int       `json:"n_support"`
}

// SVRMetrics holds the six evaluation metrics over both partitions.
type SVRMetrics struct {
	TrainMSE float64 `json:"train_mse"`
	TestMSE  float64 `json:"test_mse"`
	TrainR2  float64 `json:"train_r2"`
	TestR2   float64 `json:"test_r2"`
	TrainMAE float64 `json:"train_mae"`
	TestMAE  float64 `json:"test_mae"`
}

// DataInfo describes the dataset after missing-value rows were dropped.
type DataInfo struct {
	TotalSamples    int      `json:"total_samples"`
	TrainingSamples int      `json:"training_samples"`
	TestSamples     int      `json:"test_samples"`
	DroppedRows     int      `json:"dropped_rows"`
	Features        int      `json:"features"`
	FeatureNames    []string `json:"feature_names"`
}

// Plots carries the diagnostic images as data URIs.
type Plots struct {
	ActualVsPredicted string `json:"actual_vs_predicted"`
	Residuals         string `json:"residuals"`
}

// TrainResult is the full training endpoint payload.
type TrainResult struct {
	ModelParameters ModelParameters `json:"model_parameters"`
	Metrics         SVRMetrics      `json:"metrics"`
	DataInfo        DataInfo        `json:"data_info"`
	Plots           Plots           `json:"plots"`
}

// HealthStatus is the liveness payload. Not enveloped.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	App     string `json:"app"`
}
