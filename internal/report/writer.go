// Package report persists training-run artifacts: the human-readable text
// report, the machine-readable threshold table and the model object, all
// keyed by run timestamp.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "agroforecast/internal/errors"
	"agroforecast/internal/train"
)

// timestampLayout keys every artifact filename to its run
const timestampLayout = "20060102150405"

// WriteText renders the training report to a human-readable text file and
// returns the written path
func WriteText(report *train.Report, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.NewStorageError("create reports directory", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("report_%s.txt", now.Format(timestampLayout)))
	file, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewStorageError("create report file", err)
	}
	defer file.Close()

	if _, err := file.WriteString(renderText(report, now)); err != nil {
		return "", apperrors.NewStorageError("write report file", err)
	}
	return path, nil
}

func renderText(report *train.Report, now time.Time) string {
	var b strings.Builder
	line := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, " Seller Forecast Training Report\n")
	fmt.Fprintf(&b, "%s\n\n", line)
	fmt.Fprintf(&b, "Run:        %s\n", report.RunID)
	fmt.Fprintf(&b, "Generated:  %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Model:      %s\n", report.Model)
	fmt.Fprintf(&b, "Companies:  %d\n", len(report.Labels))
	fmt.Fprintf(&b, "Features:   %d\n\n", len(report.FeatureNames))

	fmt.Fprintf(&b, "== Target companies ==\n")
	for _, label := range report.Labels {
		fmt.Fprintf(&b, "  %s\n", label)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "== Cross-validation ==\n")
	for _, fold := range report.CrossValidation {
		fmt.Fprintf(&b, "Fold %d: f1=%.4f precision=%.4f recall=%.4f\n",
			fold.Fold, fold.Metrics.F1, fold.Metrics.Precision, fold.Metrics.Recall)
		for _, label := range report.Labels {
			point := fold.Thresholds[label]
			fmt.Fprintf(&b, "  %-24s threshold=%.4f f1=%.4f\n", label, point.Value, point.F1)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "== Hold-out test ==\n")
	fmt.Fprintf(&b, "f1=%.4f precision=%.4f recall=%.4f\n\n",
		report.TestMetrics.F1, report.TestMetrics.Precision, report.TestMetrics.Recall)

	fmt.Fprintf(&b, "== Final thresholds ==\n")
	for _, label := range report.Labels {
		fmt.Fprintf(&b, "  %-24s %.4f\n", label, report.Thresholds[label])
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "== Top features by mean gain ==\n")
	limit := min(20, len(report.Importance))
	for _, imp := range report.Importance[:limit] {
		fmt.Fprintf(&b, "  %-40s mean=%.4f std=%.4f max=%.4f\n",
			imp.Feature, imp.Mean, imp.Std, imp.Max)
	}

	return b.String()
}

// WriteThresholdsJSON writes the per-company threshold table as JSON and
// returns the written path
func WriteThresholdsJSON(report *train.Report, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.NewStorageError("create reports directory", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("thresholds_%s.json", now.Format(timestampLayout)))
	data, err := json.MarshalIndent(report.Thresholds, "", "  ")
	if err != nil {
		return "", apperrors.NewStorageError("marshal thresholds", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperrors.NewStorageError("write thresholds file", err)
	}
	return path, nil
}

// SaveModel persists the trained model as a timestamped JSON artifact
func SaveModel(model *train.MultiLabelModel, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.NewStorageError("create models directory", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("model_%s.json", now.Format(timestampLayout)))
	data, err := json.Marshal(model)
	if err != nil {
		return "", apperrors.NewStorageError("marshal model", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperrors.NewStorageError("write model file", err)
	}
	return path, nil
}

// LoadLatestModel loads the most recent model artifact from the directory.
// A missing artifact is a typed model error: inference must not proceed
// with an untrained default.
func LoadLatestModel(dir string) (*train.MultiLabelModel, string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "model_*.json"))
	if err != nil {
		return nil, "", apperrors.NewStorageError("scan models directory", err)
	}
	if len(matches) == 0 {
		return nil, "", apperrors.NewModelError("no trained model available", nil).
			WithContext("dir", dir)
	}

	// Timestamped names sort chronologically
	sort.Strings(matches)
	path := matches[len(matches)-1]

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", apperrors.NewStorageError("read model file", err)
	}

	var model train.MultiLabelModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, "", apperrors.NewParsingError("decode model file", err).
			WithContext("path", path)
	}
	return &model, path, nil
}
