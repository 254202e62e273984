package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMicroMetrics(t *testing.T) {
	tests := []struct {
		name  string
		yTrue [][]float64
		yPred [][]float64
		want  Metrics
	}{
		{
			name:  "perfect predictions",
			yTrue: [][]float64{{1, 0}, {0, 1}},
			yPred: [][]float64{{1, 0}, {0, 1}},
			want:  Metrics{F1: 1, Precision: 1, Recall: 1},
		},
		{
			name:  "all wrong",
			yTrue: [][]float64{{1, 1}, {1, 1}},
			yPred: [][]float64{{0, 0}, {0, 0}},
			want:  Metrics{},
		},
		{
			name:  "half recall full precision",
			yTrue: [][]float64{{1, 1}, {1, 1}},
			yPred: [][]float64{{1, 1}, {0, 0}},
			want:  Metrics{F1: 2.0 / 3, Precision: 1, Recall: 0.5},
		},
		{
			name:  "no positives anywhere",
			yTrue: [][]float64{{0, 0}},
			yPred: [][]float64{{0, 0}},
			want:  Metrics{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MicroMetrics(tt.yTrue, tt.yPred)
			assert.InDelta(t, tt.want.F1, got.F1, 1e-12)
			assert.InDelta(t, tt.want.Precision, got.Precision, 1e-12)
			assert.InDelta(t, tt.want.Recall, got.Recall, 1e-12)
		})
	}
}

func TestBinarize(t *testing.T) {
	probs := [][]float64{{0.2, 0.8}, {0.5, 0.49}}
	assert.Equal(t, [][]float64{{0, 1}, {1, 0}}, Binarize(probs, 0.5))
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, Binarize(probs, 0.1))
}
