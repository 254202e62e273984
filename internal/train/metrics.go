package train

// Metrics holds micro-averaged classification metrics over all
// (sample, label) cells
type Metrics struct {
	F1        float64 `json:"f1_score"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// MicroMetrics computes micro-averaged precision, recall and F1 between a
// binary truth matrix and a binary prediction matrix of the same shape
func MicroMetrics(yTrue, yPred [][]float64) Metrics {
	var tp, fp, fn float64
	for i := range yTrue {
		for j := range yTrue[i] {
			switch {
			case yPred[i][j] == 1 && yTrue[i][j] == 1:
				tp++
			case yPred[i][j] == 1 && yTrue[i][j] == 0:
				fp++
			case yPred[i][j] == 0 && yTrue[i][j] == 1:
				fn++
			}
		}
	}

	var m Metrics
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// Binarize converts a probability matrix into hard labels at a single cutoff
func Binarize(probs [][]float64, cutoff float64) [][]float64 {
	out := make([][]float64, len(probs))
	for i, row := range probs {
		out[i] = make([]float64, len(row))
		for j, p := range row {
			if p >= cutoff {
				out[i][j] = 1
			}
		}
	}
	return out
}
