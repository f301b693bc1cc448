// Package model provides the estimator base types and interfaces shared by
// the preprocessing and svm packages.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is the interface for models that learn from data.
type Estimator interface {
	// Fit trains the model on the feature matrix X and target y.
	Fit(X, y mat.Matrix) error

	// IsFitted reports whether Fit has completed successfully.
	IsFitted() bool
}

// Predictor is the interface for fitted models that produce predictions.
type Predictor interface {
	// Predict returns predictions for each row of X.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Predictor
}

// Transformer is the interface for feature transformations that are fitted
// on training data and then applied to both partitions.
type Transformer interface {
	// Fit learns the transformation statistics from X.
	Fit(X mat.Matrix) error

	// Transform applies the fitted transformation to X.
	Transform(X mat.Matrix) (mat.Matrix, error)
}
