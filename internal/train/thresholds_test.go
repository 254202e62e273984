package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestThreshold(t *testing.T) {
	t.Run("separable probabilities", func(t *testing.T) {
		yTrue := []float64{0, 0, 0, 1, 1, 1}
		probs := []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9}

		point := BestThreshold(yTrue, probs)
		// Any cutoff in (0.3, 0.7] is perfect; the scan picks 0.7
		assert.Equal(t, 0.7, point.Value)
		assert.InDelta(t, 1.0, point.F1, 1e-6)
	})

	t.Run("imbalanced with overlap", func(t *testing.T) {
		yTrue := []float64{0, 0, 0, 0, 0, 0, 0, 0, 1, 1}
		probs := []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.6, 0.1, 0.5, 0.9}

		point := BestThreshold(yTrue, probs)
		assert.GreaterOrEqual(t, point.Value, 0.0)
		assert.LessOrEqual(t, point.Value, 1.0)
		// Cutoff 0.5 catches both positives and one negative: F1 = 4/5
		assert.Equal(t, 0.5, point.Value)
		assert.InDelta(t, 0.8, point.F1, 1e-6)
	})

	t.Run("degenerate all-negative labels default to 0.5", func(t *testing.T) {
		yTrue := []float64{0, 0, 0, 0}
		probs := []float64{0.1, 0.4, 0.2, 0.3}

		point := BestThreshold(yTrue, probs)
		assert.Equal(t, 0.5, point.Value)
		assert.Equal(t, 0.0, point.F1)
	})

	t.Run("empty input defaults to 0.5", func(t *testing.T) {
		point := BestThreshold(nil, nil)
		assert.Equal(t, 0.5, point.Value)
	})

	t.Run("threshold always within unit interval", func(t *testing.T) {
		yTrue := []float64{1, 0, 1, 0, 1}
		probs := []float64{0.99, 0.98, 0.97, 0.01, 0.02}

		point := BestThreshold(yTrue, probs)
		assert.GreaterOrEqual(t, point.Value, 0.0)
		assert.LessOrEqual(t, point.Value, 1.0)
	})
}

func TestDistinctAscending(t *testing.T) {
	got := distinctAscending([]float64{0.5, 0.1, 0.5, 0.3, 0.1})
	assert.Equal(t, []float64{0.1, 0.3, 0.5}, got)
}
