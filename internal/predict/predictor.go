// Package predict turns a trained model into per-company sale forecasts
// for a requested date, synthesizing a future calendar row when the date
// lies one past the known range.
package predict

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"agroforecast/internal/dataset"
	apperrors "agroforecast/internal/errors"
	"agroforecast/internal/features"
	"agroforecast/internal/train"
)

// Prediction is one company's forecast for the requested date
type Prediction struct {
	Company     string  `json:"company"`
	Probability float64 `json:"probability"`
	Threshold   float64 `json:"threshold"`
	WillSell    bool    `json:"will_sell"`
}

// Result is the full forecast for one date
type Result struct {
	Date        time.Time    `json:"date"`
	Future      bool         `json:"future"` // true when the date was synthesized beyond the data
	Predictions []Prediction `json:"predictions"`
}

// Predictor wraps a trained model with the feature pipeline needed to
// score a date
type Predictor struct {
	model  *train.MultiLabelModel
	cfg    features.Config
	logger *slog.Logger
}

// New creates a predictor for a trained model
func New(model *train.MultiLabelModel, cfg features.Config, logger *slog.Logger) (*Predictor, error) {
	if model == nil || len(model.Classifiers) == 0 {
		return nil, apperrors.NewModelError("no trained model available", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Predictor{model: model, cfg: cfg, logger: logger}, nil
}

// ForDate builds features over the records and scores every company for the
// requested date. Dates beyond the known range are synthesized by extending
// the calendar; a date outside the completed calendar is a typed not-found
// error enumerating the valid range.
func (p *Predictor) ForDate(ctx context.Context, records []dataset.MergedRecord, universe []string, date time.Time) (*Result, error) {
	rows, topProducts := features.AggregateDaily(records, p.cfg)
	rows = features.Complete(rows)
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("no historical data to predict from")
	}

	_, last := features.DateRange(rows)
	future := date.After(last)
	if future {
		p.logger.InfoContext(ctx, "requested date is beyond known data, synthesizing",
			"date", date.Format("2006-01-02"),
			"last_known", last.Format("2006-01-02"),
		)
		extended, err := features.Extend(rows, date)
		if err != nil {
			return nil, fmt.Errorf("extend calendar: %w", err)
		}
		rows = extended
	}

	rows = features.BuildCompanyFeatures(rows, universe, p.cfg)

	idx := -1
	for i, row := range rows {
		if row.Date.Equal(date) {
			idx = i
			break
		}
	}
	if idx < 0 {
		first, last := features.DateRange(rows)
		return nil, apperrors.NewNotFoundError("requested date").
			WithContext("date", date.Format("2006-01-02")).
			WithContext("available_from", first.Format("2006-01-02")).
			WithContext("available_to", last.Format("2006-01-02"))
	}

	matrix, names, _ := features.BuildMatrix(rows, universe, topProducts)
	vector := reorder(matrix[idx], names, p.model.FeatureNames)

	probs, err := p.model.PredictProba([][]float64{vector})
	if err != nil {
		return nil, fmt.Errorf("predict probabilities: %w", err)
	}

	result := &Result{Date: date, Future: future}
	for j, company := range p.model.Labels {
		threshold := p.model.Threshold(company)
		result.Predictions = append(result.Predictions, Prediction{
			Company:     company,
			Probability: probs[0][j],
			Threshold:   threshold,
			WillSell:    probs[0][j] >= threshold,
		})
	}
	sort.Slice(result.Predictions, func(i, j int) bool {
		return result.Predictions[i].Probability > result.Predictions[j].Probability
	})

	return result, nil
}

// reorder maps a feature vector onto the model's training-time column
// order; columns the model expects but the row lacks become NaN and are
// handled by the booster's missing-value routing
func reorder(vector []float64, names, wanted []string) []float64 {
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	out := make([]float64, len(wanted))
	for i, name := range wanted {
		if j, ok := index[name]; ok {
			out[i] = vector[j]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
