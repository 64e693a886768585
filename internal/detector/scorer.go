package detector

import (
	"fmt"

	"github.com/markany/safepc-insider/internal/feature"
)

// Status is the user-facing anomaly label.
type Status string

const (
	StatusNormal     Status = "Normal"
	StatusSuspicious Status = "Suspicious"
)

// ScoredRow is a feature row extended with its anomaly label. Computed on
// demand per interaction, never persisted.
type ScoredRow struct {
	feature.Row
	Status Status `json:"status"`
}

// Score labels every row of the feature table. Exactly the three count
// columns feed the model; output order mirrors the table's physical order.
func Score(tbl *feature.Table, det Detector) ([]ScoredRow, error) {
	if tbl == nil || tbl.Len() == 0 {
		return nil, fmt.Errorf("score: empty feature table")
	}

	rows := tbl.Rows()
	data := make([][]float64, len(rows))
	for i, r := range rows {
		data[i] = []float64{float64(r.LogonCount), float64(r.HTTPCount), float64(r.DeviceCount)}
	}

	preds, err := det.Predict(data)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	scored := make([]ScoredRow, len(rows))
	for i, r := range rows {
		status := StatusNormal
		if preds[i] == PredAnomaly {
			status = StatusSuspicious
		}
		scored[i] = ScoredRow{Row: r, Status: status}
	}
	return scored, nil
}

// Train fits a fresh forest on the feature table. Offline path only; the
// serving process never retrains.
func Train(tbl *feature.Table, opts ...Option) (*Forest, error) {
	if tbl == nil || tbl.Len() == 0 {
		return nil, fmt.Errorf("train: empty feature table")
	}
	rows := tbl.Rows()
	data := make([][]float64, len(rows))
	for i, r := range rows {
		data[i] = []float64{float64(r.LogonCount), float64(r.HTTPCount), float64(r.DeviceCount)}
	}
	f := New(opts...)
	if err := f.Fit(data); err != nil {
		return nil, err
	}
	return f, nil
}
