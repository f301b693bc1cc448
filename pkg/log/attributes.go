// Package log defines standard attribute keys for the upload and training
// endpoints.
//
// Using these keys consistently keeps request logs filterable: every log line
// about a dataset carries the same shape keys, every training line the same
// hyperparameter and metric keys.

package log

// Request context.
const (
	// EndpointKey identifies the handler emitting the log line.
	// Examples: "upload-info", "train-svr", "health"
	EndpointKey = "http.endpoint"

	// FilenameKey is the client-supplied name of the uploaded file.
	FilenameKey = "upload.filename"

	// FileSizeKey is the uploaded file size in bytes, as reported by the
	// multipart header (checked against the configured cap before parsing).
	FileSizeKey = "upload.size_bytes"
)

// Dataset shape.
const (
	// RowsKey is the number of rows in the parsed table.
	RowsKey = "data.rows"

	// ColumnsKey is the number of columns in the parsed table.
	ColumnsKey = "data.columns"

	// DroppedRowsKey counts rows removed for missing target/feature values.
	DroppedRowsKey = "data.dropped_rows"

	// TrainSamplesKey and TestSamplesKey are the partition sizes after the
	// seeded split.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"
)

// Training context.
const (
	// TargetKey is the target column name.
	TargetKey = "train.target"

	// FeaturesUsedKey is the number of numeric feature columns actually used.
	FeaturesUsedKey = "train.features"

	// SeedKey is the reproducibility seed for the split.
	SeedKey = "train.seed"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// TestR2Key and TestMSEKey record headline evaluation metrics.
	TestR2Key  = "metrics.test_r2"
	TestMSEKey = "metrics.test_mse"
)
