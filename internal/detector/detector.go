// Package detector holds the fitted anomaly model and the scoring path.
// The model is fit once offline (insider train) and loaded read-only by the
// serving process; inference is deterministic for a fixed artifact.
package detector

import "errors"

// Prediction labels follow the sklearn convention: +1 normal, -1 anomalous.
const (
	PredNormal  = 1
	PredAnomaly = -1
)

// ErrModelUnavailable marks a missing or corrupt model artifact. Fatal for
// the scoring path; there is no fallback scoring.
var ErrModelUnavailable = errors.New("model unavailable")

// ErrNotFitted is returned when Predict runs before Fit or Load.
var ErrNotFitted = errors.New("detector not fitted")

// Detector is the fit/predict contract the serving path depends on. Any
// binary classifier meeting it can stand in for the isolation forest.
type Detector interface {
	// Fit trains on historical data; each row is one sample.
	Fit(data [][]float64) error
	// Predict labels each sample PredNormal or PredAnomaly. Must be
	// deterministic for a fitted model and safe for concurrent use.
	Predict(data [][]float64) ([]int, error)
}
