package train

import (
	"agroforecast/internal/boost"
	apperrors "agroforecast/internal/errors"
)

// MultiLabelModel is one independent binary classifier per company label.
// FeatureNames and Labels fix the column contract established at training
// time; a predictor must reorder its input to FeatureNames and read outputs
// in Labels order.
type MultiLabelModel struct {
	Name         string              `json:"name"`
	FeatureNames []string            `json:"feature_names"`
	Labels       []string            `json:"labels"`
	Params       boost.Params        `json:"params"`
	Classifiers  []*boost.Classifier `json:"classifiers"`
	Thresholds   map[string]float64  `json:"thresholds"`
}

// PredictProba returns the positive-class probability per sample and label,
// shaped [sample][label] in Labels order
func (m *MultiLabelModel) PredictProba(X [][]float64) ([][]float64, error) {
	if len(m.Classifiers) != len(m.Labels) {
		return nil, apperrors.NewModelError("classifier count does not match label count", nil)
	}

	probs := make([][]float64, len(X))
	for i := range probs {
		probs[i] = make([]float64, len(m.Labels))
	}

	for j, clf := range m.Classifiers {
		col, err := clf.PredictProba(X)
		if err != nil {
			return nil, apperrors.NewModelError("predict label "+m.Labels[j], err)
		}
		for i := range X {
			probs[i][j] = col[i]
		}
	}

	return probs, nil
}

// Predict returns hard labels using each company's calibrated threshold,
// falling back to the 0.5 default for labels without one
func (m *MultiLabelModel) Predict(X [][]float64) ([][]float64, error) {
	probs, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(probs))
	for i, row := range probs {
		out[i] = make([]float64, len(row))
		for j, p := range row {
			cutoff := defaultThreshold
			if t, ok := m.Thresholds[m.Labels[j]]; ok {
				cutoff = t
			}
			if p >= cutoff {
				out[i][j] = 1
			}
		}
	}
	return out, nil
}

// Threshold returns the calibrated cutoff for a company, or the default
func (m *MultiLabelModel) Threshold(label string) float64 {
	if t, ok := m.Thresholds[label]; ok {
		return t
	}
	return defaultThreshold
}
