package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroforecast/internal/boost"
	apperrors "agroforecast/internal/errors"
	"agroforecast/internal/train"
)

func sampleReport() *train.Report {
	return &train.Report{
		RunID:        "f2c1a6c0-0000-4000-8000-000000000000",
		Model:        "MultiLabelBoost",
		Labels:       []string{"alfa", "beta"},
		FeatureNames: []string{"total_volume", "mean_price"},
		CrossValidation: []train.FoldReport{
			{
				Fold:    1,
				Metrics: train.Metrics{F1: 0.8, Precision: 0.9, Recall: 0.72},
				Thresholds: map[string]train.ThresholdPoint{
					"alfa": {Value: 0.42, F1: 0.81},
					"beta": {Value: 0.5, F1: 0},
				},
			},
		},
		TestMetrics: train.Metrics{F1: 0.75, Precision: 0.8, Recall: 0.7},
		Thresholds:  map[string]float64{"alfa": 0.42, "beta": 0.5},
		Importance: []train.ImportanceSummary{
			{Feature: "total_volume", Mean: 12.5, Std: 1.2, Max: 14},
			{Feature: "mean_price", Mean: 3.1, Std: 0.4, Max: 3.6},
		},
	}
}

func TestWriteText(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 10, 1, 12, 30, 0, 0, time.UTC)

	path, err := WriteText(sampleReport(), dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_20241001123000.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Seller Forecast Training Report")
	assert.Contains(t, text, "MultiLabelBoost")
	assert.Contains(t, text, "alfa")
	assert.Contains(t, text, "beta")
	assert.Contains(t, text, "Fold 1")
	assert.Contains(t, text, "f1=0.7500")
	assert.Contains(t, text, "total_volume")
}

func TestWriteThresholdsJSON(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 10, 1, 12, 30, 0, 0, time.UTC)

	path, err := WriteThresholdsJSON(sampleReport(), dir, now)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]float64
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]float64{"alfa": 0.42, "beta": 0.5}, got)
}

func TestSaveAndLoadModel(t *testing.T) {
	dir := t.TempDir()

	params := boost.DefaultParams()
	params.Rounds = 5
	params.MaxDepth = 2
	params.Subsample = 1
	params.ColsampleByTree = 1

	X := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}, {0.15}, {0.85}}
	y := []float64{0, 0, 1, 1, 0, 1}
	clf := boost.NewClassifier(params)
	require.NoError(t, clf.Fit(X, y))

	model := &train.MultiLabelModel{
		Name:         "MultiLabelBoost",
		FeatureNames: []string{"signal"},
		Labels:       []string{"alfa"},
		Params:       params,
		Classifiers:  []*boost.Classifier{clf},
		Thresholds:   map[string]float64{"alfa": 0.42},
	}

	_, err := SaveModel(model, dir, time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	loaded, path, err := LoadLatestModel(dir)
	require.NoError(t, err)
	assert.Contains(t, path, "model_20241001120000.json")

	assert.Equal(t, model.Labels, loaded.Labels)
	assert.Equal(t, model.Thresholds, loaded.Thresholds)

	want, err := model.PredictProba(X)
	require.NoError(t, err)
	got, err := loaded.PredictProba(X)
	require.NoError(t, err)
	for i := range want {
		assert.InDelta(t, want[i][0], got[i][0], 1e-12)
	}
}

func TestLoadLatestModel_PicksNewest(t *testing.T) {
	dir := t.TempDir()

	older := &train.MultiLabelModel{Name: "older", Labels: []string{"alfa"}}
	newer := &train.MultiLabelModel{Name: "newer", Labels: []string{"alfa"}}

	_, err := SaveModel(older, dir, time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = SaveModel(newer, dir, time.Date(2024, 10, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	loaded, _, err := LoadLatestModel(dir)
	require.NoError(t, err)
	assert.Equal(t, "newer", loaded.Name)
}

func TestLoadLatestModel_Missing(t *testing.T) {
	_, _, err := LoadLatestModel(t.TempDir())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeModel))
}

func TestLoadLatestModel_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_20241001120000.json"), []byte("{not json"), 0644))

	_, _, err := LoadLatestModel(dir)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}
