package train

import (
	"sort"
)

// thresholdEpsilon guards the F1 ratio when precision and recall are both 0
const thresholdEpsilon = 1e-8

// defaultThreshold is used whenever the precision-recall curve is
// degenerate (no positive labels, or no candidate cutoff with a defined
// F1 point)
const defaultThreshold = 0.5

// ThresholdPoint is the chosen cutoff for one company and the F1 score it
// achieved on the curve
type ThresholdPoint struct {
	Value float64 `json:"value"`
	F1    float64 `json:"f1"`
}

// BestThreshold scans the precision-recall curve of one label's
// probabilities and returns the cutoff maximizing F1. Candidates are the
// distinct predicted probabilities; a sample is predicted positive when its
// probability is >= the cutoff. Degenerate curves short-circuit to the 0.5
// default rather than failing.
func BestThreshold(yTrue, probs []float64) ThresholdPoint {
	positives := 0
	for _, v := range yTrue {
		if v == 1 {
			positives++
		}
	}
	if positives == 0 || len(probs) == 0 {
		return ThresholdPoint{Value: defaultThreshold}
	}

	candidates := distinctAscending(probs)

	best := ThresholdPoint{Value: defaultThreshold, F1: -1}
	for _, cutoff := range candidates {
		var tp, fp float64
		for i, p := range probs {
			if p < cutoff {
				continue
			}
			if yTrue[i] == 1 {
				tp++
			} else {
				fp++
			}
		}

		var precision float64
		if tp+fp > 0 {
			precision = tp / (tp + fp)
		}
		recall := tp / float64(positives)
		f1 := 2 * precision * recall / (precision + recall + thresholdEpsilon)

		if f1 > best.F1 {
			best = ThresholdPoint{Value: cutoff, F1: f1}
		}
	}

	if best.F1 < 0 {
		return ThresholdPoint{Value: defaultThreshold}
	}
	return best
}

func distinctAscending(xs []float64) []float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	distinct := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v > distinct[len(distinct)-1] {
			distinct = append(distinct, v)
		}
	}
	return distinct
}
