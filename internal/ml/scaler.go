package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes numeric features to zero mean and unit
// variance. It is fitted on the training partition only and reapplied
// verbatim at inference time.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// Fit learns per-column mean and standard deviation from the rows. Columns
// with zero variance get a standard deviation of 1 so transforming them is a
// no-op shift.
func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("cannot fit scaler on zero rows")
	}
	width := len(rows[0])
	s.Mean = make([]float64, width)
	s.Std = make([]float64, width)

	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		mean := stat.Mean(col, nil)

		// Population variance, matching the convention of standardizing by
		// the biased estimator.
		var ss float64
		for _, v := range col {
			d := v - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(len(col)))
		if std == 0 {
			std = 1
		}

		s.Mean[j] = mean
		s.Std[j] = std
	}
	return nil
}

// Transform standardizes rows in place using the fitted parameters.
func (s *StandardScaler) Transform(rows [][]float64) error {
	if !s.Fitted() {
		return fmt.Errorf("scaler is not fitted")
	}
	for _, row := range rows {
		if len(row) != len(s.Mean) {
			return fmt.Errorf("row has %d values, scaler fitted on %d", len(row), len(s.Mean))
		}
		for j := range row {
			row[j] = (row[j] - s.Mean[j]) / s.Std[j]
		}
	}
	return nil
}

// Fitted reports whether the scaler has been fitted.
func (s *StandardScaler) Fitted() bool { return len(s.Mean) > 0 }

// Width returns the number of columns the scaler was fitted on.
func (s *StandardScaler) Width() int { return len(s.Mean) }
