package boost

import (
	"math"
	"sort"
)

// binIndex holds the per-feature histogram bin edges and the pre-computed
// bin of every sample. Missing values (NaN) get bin -1 and are routed by
// each split's learned default direction.
type binIndex struct {
	edges  [][]float64 // per feature, ascending; bin b holds values in [edges[b-1], edges[b])
	binned [][]int32   // per feature, per sample
}

// buildBins computes quantile bin edges for every feature and bins the data
func buildBins(X [][]float64, nFeatures, maxBins int) *binIndex {
	idx := &binIndex{
		edges:  make([][]float64, nFeatures),
		binned: make([][]int32, nFeatures),
	}

	values := make([]float64, 0, len(X))
	for f := 0; f < nFeatures; f++ {
		values = values[:0]
		for _, row := range X {
			if !math.IsNaN(row[f]) {
				values = append(values, row[f])
			}
		}
		idx.edges[f] = quantileEdges(values, maxBins)

		binned := make([]int32, len(X))
		for i, row := range X {
			binned[i] = int32(binOf(row[f], idx.edges[f]))
		}
		idx.binned[f] = binned
	}

	return idx
}

// quantileEdges returns up to maxBins-1 ascending cut points placed at
// midpoints between distinct quantile values
func quantileEdges(values []float64, maxBins int) []float64 {
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	// Distinct candidate values at evenly spaced quantiles
	var candidates []float64
	step := float64(len(sorted)) / float64(maxBins)
	if step < 1 {
		step = 1
	}
	for pos := 0.0; int(pos) < len(sorted); pos += step {
		v := sorted[int(pos)]
		if len(candidates) == 0 || v > candidates[len(candidates)-1] {
			candidates = append(candidates, v)
		}
	}
	if last := sorted[len(sorted)-1]; len(candidates) == 0 || last > candidates[len(candidates)-1] {
		candidates = append(candidates, last)
	}

	edges := make([]float64, 0, len(candidates)-1)
	for i := 1; i < len(candidates); i++ {
		edges = append(edges, (candidates[i-1]+candidates[i])/2)
	}
	return edges
}

// binOf returns the histogram bin of a value, -1 for NaN
func binOf(v float64, edges []float64) int {
	if math.IsNaN(v) {
		return -1
	}
	return sort.Search(len(edges), func(i int) bool { return v < edges[i] })
}

// bin returns the pre-computed bin of sample i for feature f
func (b *binIndex) bin(f, i int) int {
	return int(b.binned[f][i])
}

// binCount returns the number of bins for feature f
func (b *binIndex) binCount(f int) int {
	return len(b.edges[f]) + 1
}

// upperEdge returns the cut point above bin b for feature f
func (b *binIndex) upperEdge(f, bin int) float64 {
	return b.edges[f][bin]
}
