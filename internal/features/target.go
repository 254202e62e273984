package features

import (
	"sort"
)

// EncodeTarget converts the per-date sold-sets into a fixed-width
// multi-label indicator matrix. Rows align 1:1 with the input; columns align
// 1:1 with the sorted, deduplicated set of companies seen across every
// sold-set. Cell (i,j) = 1 iff company j sold on date i.
//
// Labels come from the observed sold-sets, not the full company universe:
// a company that never sold would get an all-zero column, and its classifier
// could only ever learn the degenerate prior. Such companies still get
// feature columns; they are only absent from the target space.
//
// The returned label order from a training run is authoritative: it must be
// threaded unchanged through the model, the threshold table and any later
// prediction step. When every sold-set is empty the matrix is empty and the
// label list nil; this is not an error.
func EncodeTarget(rows []DailyRow) ([][]float64, []string) {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for company := range row.SoldSet {
			seen[company] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, nil
	}

	labels := make([]string, 0, len(seen))
	for company := range seen {
		labels = append(labels, company)
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for j, company := range labels {
		index[company] = j
	}

	matrix := make([][]float64, len(rows))
	for i, row := range rows {
		matrix[i] = make([]float64, len(labels))
		for company := range row.SoldSet {
			matrix[i][index[company]] = 1
		}
	}

	return matrix, labels
}

// Column extracts one label's binary target vector from the matrix
func Column(matrix [][]float64, j int) []float64 {
	col := make([]float64, len(matrix))
	for i := range matrix {
		col[i] = matrix[i][j]
	}
	return col
}
