package boost

import (
	"math"
)

// Node is one node of a regression tree. Leaves carry the weight in Value;
// internal nodes split on Feature < Threshold with NaN values routed to the
// left child when DefaultLeft is set.
type Node struct {
	Feature     int     `json:"feature"`
	Threshold   float64 `json:"threshold"`
	DefaultLeft bool    `json:"default_left"`
	Left        int     `json:"left"`  // -1 for leaves
	Right       int     `json:"right"` // -1 for leaves
	Value       float64 `json:"value"`
	Gain        float64 `json:"gain"`
}

// IsLeaf reports whether the node is a leaf
func (n Node) IsLeaf() bool {
	return n.Left < 0
}

// Tree is a flat-array regression tree; node 0 is the root
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict walks a sample down the tree and returns the leaf weight
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		v := x[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.DefaultLeft {
				i = n.Left
			} else {
				i = n.Right
			}
		case v < n.Threshold:
			i = n.Left
		default:
			i = n.Right
		}
	}
}

// treeBuilder grows one tree greedily from binned gradient statistics
type treeBuilder struct {
	params   Params
	bins     *binIndex
	grad     []float64
	hess     []float64
	features []int // features available to this tree after column sampling
}

// splitCandidate is the best split found for one node
type splitCandidate struct {
	feature     int
	bin         int // samples with bin < this go left
	threshold   float64
	defaultLeft bool
	gain        float64
	left, right []int
}

// build grows the tree over the given sample indices
func (b *treeBuilder) build(samples []int) Tree {
	t := Tree{}
	b.grow(&t, samples, 0)
	return t
}

// grow appends a subtree for the samples and returns its root index
func (b *treeBuilder) grow(t *Tree, samples []int, depth int) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Left: -1, Right: -1})

	gSum, hSum := b.sums(samples)
	if depth >= b.params.MaxDepth || len(samples) < 2 {
		t.Nodes[idx].Value = b.leafWeight(gSum, hSum)
		return idx
	}

	best := b.bestSplit(samples, gSum, hSum)
	if best == nil {
		t.Nodes[idx].Value = b.leafWeight(gSum, hSum)
		return idx
	}

	t.Nodes[idx].Feature = best.feature
	t.Nodes[idx].Threshold = best.threshold
	t.Nodes[idx].DefaultLeft = best.defaultLeft
	t.Nodes[idx].Gain = best.gain

	left := b.grow(t, best.left, depth+1)
	right := b.grow(t, best.right, depth+1)
	t.Nodes[idx].Left = left
	t.Nodes[idx].Right = right
	return idx
}

func (b *treeBuilder) sums(samples []int) (float64, float64) {
	var g, h float64
	for _, i := range samples {
		g += b.grad[i]
		h += b.hess[i]
	}
	return g, h
}

// bestSplit scans every candidate feature's histogram for the split with
// the highest gain, trying both default directions for missing values
func (b *treeBuilder) bestSplit(samples []int, gSum, hSum float64) *splitCandidate {
	parentScore := b.score(gSum, hSum)
	var best *splitCandidate

	for _, f := range b.features {
		nBins := b.bins.binCount(f)
		if nBins < 2 {
			continue
		}

		gHist := make([]float64, nBins)
		hHist := make([]float64, nBins)
		var gMiss, hMiss float64
		for _, i := range samples {
			bin := b.bins.bin(f, i)
			if bin < 0 {
				gMiss += b.grad[i]
				hMiss += b.hess[i]
				continue
			}
			gHist[bin] += b.grad[i]
			hHist[bin] += b.hess[i]
		}

		var gLeft, hLeft float64
		for bin := 1; bin < nBins; bin++ {
			gLeft += gHist[bin-1]
			hLeft += hHist[bin-1]
			gRight := gSum - gMiss - gLeft
			hRight := hSum - hMiss - hLeft

			// Try routing missing values to each side
			for _, defaultLeft := range []bool{true, false} {
				gl, hl, gr, hr := gLeft, hLeft, gRight, hRight
				if defaultLeft {
					gl += gMiss
					hl += hMiss
				} else {
					gr += gMiss
					hr += hMiss
				}
				if hl < b.params.MinChildWeight || hr < b.params.MinChildWeight {
					continue
				}

				gain := 0.5 * (b.score(gl, hl) + b.score(gr, hr) - parentScore)
				if gain <= 1e-12 {
					continue
				}
				if best == nil || gain > best.gain {
					best = &splitCandidate{
						feature:     f,
						bin:         bin,
						threshold:   b.bins.upperEdge(f, bin-1),
						defaultLeft: defaultLeft,
						gain:        gain,
					}
				}
			}
		}
	}

	if best == nil {
		return nil
	}

	for _, i := range samples {
		bin := b.bins.bin(best.feature, i)
		toLeft := bin >= 0 && bin < best.bin || bin < 0 && best.defaultLeft
		if toLeft {
			best.left = append(best.left, i)
		} else {
			best.right = append(best.right, i)
		}
	}
	if len(best.left) == 0 || len(best.right) == 0 {
		return nil
	}
	return best
}

// score is the structure score of a node with L1 soft-thresholding on the
// gradient sum and L2 on the hessian sum
func (b *treeBuilder) score(g, h float64) float64 {
	tg := softThreshold(g, b.params.RegAlpha)
	return tg * tg / (h + b.params.RegLambda)
}

// leafWeight computes the regularized leaf value with shrinkage baked in
func (b *treeBuilder) leafWeight(g, h float64) float64 {
	return -b.params.LearningRate * softThreshold(g, b.params.RegAlpha) / (h + b.params.RegLambda)
}

func softThreshold(g, alpha float64) float64 {
	switch {
	case g > alpha:
		return g - alpha
	case g < -alpha:
		return g + alpha
	default:
		return 0
	}
}
