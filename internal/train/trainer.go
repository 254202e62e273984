// Package train fits one binary classifier per company label with
// expanding-window temporal cross-validation, calibrates per-company
// decision thresholds on precision-recall curves, and evaluates once on an
// untouched hold-out partition.
package train

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"agroforecast/internal/boost"
	apperrors "agroforecast/internal/errors"
	"agroforecast/internal/split"
)

// modelName identifies the classifier family in reports
const modelName = "MultiLabelBoost"

// Trainer runs the full training and calibration procedure
type Trainer struct {
	params      boost.Params
	testSize    float64
	folds       int
	concurrency int
	logger      *slog.Logger
}

// NewTrainer creates a trainer. concurrency 0 means one fit per available
// core; per-company fits are independent, so they parallelize freely.
func NewTrainer(params boost.Params, testSize float64, folds, concurrency int, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Trainer{
		params:      params,
		testSize:    testSize,
		folds:       folds,
		concurrency: concurrency,
		logger:      logger,
	}
}

// FoldReport holds one cross-validation fold's metrics and per-company
// thresholds
type FoldReport struct {
	Fold       int                       `json:"fold"`
	Metrics    Metrics                   `json:"metrics"`
	Thresholds map[string]ThresholdPoint `json:"thresholds"`
}

// ImportanceSummary aggregates one feature's gain importance across all
// per-company classifiers
type ImportanceSummary struct {
	Feature string  `json:"feature"`
	Mean    float64 `json:"mean_importance"`
	Std     float64 `json:"std_importance"`
	Max     float64 `json:"max_importance"`
}

// Report is the structured training report consumed by the report writer
type Report struct {
	RunID           string              `json:"run_id"`
	Model           string              `json:"model"`
	Labels          []string            `json:"target_names"`
	FeatureNames    []string            `json:"feature_names"`
	CrossValidation []FoldReport        `json:"cross_validation"`
	TestMetrics     Metrics             `json:"test_performance"`
	Thresholds      map[string]float64  `json:"thresholds"`
	Importance      []ImportanceSummary `json:"feature_importances"`
}

// Train runs temporal cross-validation, refits on the full training
// partition, calibrates final thresholds and evaluates on the hold-out.
// Rows of X, y and dates must align; labels fix the column order of y.
func (t *Trainer) Train(ctx context.Context, X [][]float64, featureNames []string, y [][]float64, labels []string, dates []time.Time) (*MultiLabelModel, *Report, error) {
	if len(X) == 0 || len(X) != len(y) || len(X) != len(dates) {
		return nil, nil, apperrors.NewValidationError("feature matrix, targets and dates must align").
			WithContext("rows", len(X)).
			WithContext("targets", len(y)).
			WithContext("dates", len(dates))
	}
	if len(labels) == 0 {
		return nil, nil, apperrors.NewValidationError("empty company label list")
	}

	start := time.Now()
	runID := uuid.NewString()
	t.logger.InfoContext(ctx, "starting training run",
		"run_id", runID,
		"samples", len(X),
		"features", len(featureNames),
		"labels", len(labels),
		"test_size", t.testSize,
		"folds", t.folds,
	)

	trainIdx, testIdx, err := split.TrainTestSplit(dates, t.testSize)
	if err != nil {
		return nil, nil, fmt.Errorf("temporal train/test split: %w", err)
	}

	XTrain, yTrain := subset(X, trainIdx), subset(y, trainIdx)
	XTest, yTest := subset(X, testIdx), subset(y, testIdx)

	folds, err := split.TimeSeriesSplit(len(XTrain), t.folds)
	if err != nil {
		return nil, nil, fmt.Errorf("cross-validation split: %w", err)
	}

	var foldReports []FoldReport
	for f, fold := range folds {
		report, err := t.runFold(ctx, f+1, fold, XTrain, yTrain, labels)
		if err != nil {
			return nil, nil, fmt.Errorf("fold %d: %w", f+1, err)
		}
		foldReports = append(foldReports, report)
		t.logger.InfoContext(ctx, "fold complete",
			"fold", f+1,
			"f1", report.Metrics.F1,
			"precision", report.Metrics.Precision,
			"recall", report.Metrics.Recall,
		)
	}

	// Refit on the entire training partition for the deployed model
	t.logger.InfoContext(ctx, "refitting final model on full training partition",
		"samples", len(XTrain))
	classifiers, err := t.fitAll(ctx, XTrain, yTrain, labels)
	if err != nil {
		return nil, nil, fmt.Errorf("final fit: %w", err)
	}

	finalProbs, err := predictAll(classifiers, XTrain)
	if err != nil {
		return nil, nil, fmt.Errorf("final training predictions: %w", err)
	}
	thresholds := make(map[string]float64, len(labels))
	for j, label := range labels {
		point := BestThreshold(column(yTrain, j), column(finalProbs, j))
		thresholds[label] = point.Value
	}

	model := &MultiLabelModel{
		Name:         modelName,
		FeatureNames: featureNames,
		Labels:       labels,
		Params:       t.params,
		Classifiers:  classifiers,
		Thresholds:   thresholds,
	}

	// One unbiased evaluation on the untouched hold-out
	testProbs, err := predictAll(classifiers, XTest)
	if err != nil {
		return nil, nil, fmt.Errorf("hold-out predictions: %w", err)
	}
	testMetrics := MicroMetrics(yTest, Binarize(testProbs, defaultThreshold))

	report := &Report{
		RunID:           runID,
		Model:           modelName,
		Labels:          labels,
		FeatureNames:    featureNames,
		CrossValidation: foldReports,
		TestMetrics:     testMetrics,
		Thresholds:      thresholds,
		Importance:      t.importanceSummary(classifiers, featureNames),
	}

	t.logger.InfoContext(ctx, "training run complete",
		"run_id", runID,
		"duration", time.Since(start),
		"test_f1", testMetrics.F1,
	)

	return model, report, nil
}

// runFold fits all companies on the fold's expanding training block and
// evaluates on its validation block
func (t *Trainer) runFold(ctx context.Context, foldNum int, fold split.Fold, X, y [][]float64, labels []string) (FoldReport, error) {
	XFit, yFit := subset(X, fold.TrainIdx), subset(y, fold.TrainIdx)
	XVal, yVal := subset(X, fold.ValIdx), subset(y, fold.ValIdx)

	classifiers, err := t.fitAll(ctx, XFit, yFit, labels)
	if err != nil {
		return FoldReport{}, err
	}

	probs, err := predictAll(classifiers, XVal)
	if err != nil {
		return FoldReport{}, err
	}

	report := FoldReport{
		Fold:       foldNum,
		Metrics:    MicroMetrics(yVal, Binarize(probs, defaultThreshold)),
		Thresholds: make(map[string]ThresholdPoint, len(labels)),
	}
	for j, label := range labels {
		report.Thresholds[label] = BestThreshold(column(yVal, j), column(probs, j))
	}
	return report, nil
}

// fitAll trains one classifier per label in parallel. Companies are
// independent binary problems, so there is no shared mutable state; the
// errgroup wait is the barrier before any aggregate metric is computed.
func (t *Trainer) fitAll(ctx context.Context, X, y [][]float64, labels []string) ([]*boost.Classifier, error) {
	classifiers := make([]*boost.Classifier, len(labels))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for j := range labels {
		j := j
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			clf := boost.NewClassifier(t.params)
			if err := clf.Fit(X, column(y, j)); err != nil {
				return fmt.Errorf("fit %s: %w", labels[j], err)
			}
			classifiers[j] = clf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return classifiers, nil
}

// predictAll collects per-label probabilities into a [sample][label] matrix
func predictAll(classifiers []*boost.Classifier, X [][]float64) ([][]float64, error) {
	probs := make([][]float64, len(X))
	for i := range probs {
		probs[i] = make([]float64, len(classifiers))
	}
	for j, clf := range classifiers {
		col, err := clf.PredictProba(X)
		if err != nil {
			return nil, err
		}
		for i := range X {
			probs[i][j] = col[i]
		}
	}
	return probs, nil
}

// importanceSummary aggregates gain importance per feature across the
// per-company classifiers
func (t *Trainer) importanceSummary(classifiers []*boost.Classifier, featureNames []string) []ImportanceSummary {
	perFeature := make([][]float64, len(featureNames))
	for f := range perFeature {
		perFeature[f] = make([]float64, len(classifiers))
	}
	for j, clf := range classifiers {
		for f, gain := range clf.FeatureImportance() {
			perFeature[f][j] = gain
		}
	}

	summaries := make([]ImportanceSummary, 0, len(featureNames))
	for f, gains := range perFeature {
		summaries = append(summaries, ImportanceSummary{
			Feature: featureNames[f],
			Mean:    meanOf(gains),
			Std:     stdOf(gains),
			Max:     maxOf(gains),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Mean != summaries[j].Mean {
			return summaries[i].Mean > summaries[j].Mean
		}
		return summaries[i].Feature < summaries[j].Feature
	})
	return summaries
}

func subset[T any](rows []T, idx []int) []T {
	out := make([]T, 0, len(idx))
	for _, i := range idx {
		out = append(out, rows[i])
	}
	return out
}

func column(matrix [][]float64, j int) []float64 {
	col := make([]float64, len(matrix))
	for i := range matrix {
		col[i] = matrix[i][j]
	}
	return col
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func stdOf(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := meanOf(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
