package boost

import (
	"math"
	"math/rand"
	"sort"

	apperrors "agroforecast/internal/errors"
)

// Classifier is a binary probabilistic classifier built from boosted
// regression trees on the logistic objective. The zero value is not usable;
// construct with NewClassifier and call Fit before predicting.
type Classifier struct {
	Params    Params  `json:"params"`
	Trees     []Tree  `json:"trees"`
	BaseScore float64 `json:"base_score"` // prior in logit space
	NFeatures int     `json:"n_features"`
}

// NewClassifier creates an unfitted classifier with the given parameters
func NewClassifier(params Params) *Classifier {
	return &Classifier{Params: params}
}

// IsFitted reports whether Fit has completed
func (c *Classifier) IsFitted() bool {
	return len(c.Trees) > 0 || c.NFeatures > 0
}

// Fit trains the booster on the feature matrix and binary labels.
// Training is deterministic for a fixed seed.
func (c *Classifier) Fit(X [][]float64, y []float64) error {
	if !c.Params.IsValid() {
		return apperrors.NewValidationError("invalid booster parameters")
	}
	if len(X) == 0 || len(X) != len(y) {
		return apperrors.NewValidationError("feature matrix and labels must align").
			WithContext("rows", len(X)).
			WithContext("labels", len(y))
	}
	nFeatures := len(X[0])
	for i, row := range X {
		if len(row) != nFeatures {
			return apperrors.NewValidationError("ragged feature matrix").
				WithContext("row", i)
		}
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return apperrors.NewValidationError("labels must be 0 or 1").
				WithContext("row", i)
		}
	}

	c.NFeatures = nFeatures
	c.Trees = make([]Tree, 0, c.Params.Rounds)
	c.BaseScore = logit(clampProb(meanOf(y)))

	rng := rand.New(rand.NewSource(c.Params.Seed))
	bins := buildBins(X, nFeatures, c.Params.MaxBins)

	raw := make([]float64, len(X))
	for i := range raw {
		raw[i] = c.BaseScore
	}
	grad := make([]float64, len(X))
	hess := make([]float64, len(X))

	for round := 0; round < c.Params.Rounds; round++ {
		for i := range X {
			p := sigmoid(raw[i])
			grad[i] = p - y[i]
			hess[i] = p * (1 - p)
		}

		builder := &treeBuilder{
			params:   c.Params,
			bins:     bins,
			grad:     grad,
			hess:     hess,
			features: sampleIndices(nFeatures, c.Params.ColsampleByTree, rng),
		}
		tree := builder.build(sampleIndices(len(X), c.Params.Subsample, rng))
		c.Trees = append(c.Trees, tree)

		for i, row := range X {
			raw[i] += tree.Predict(row)
		}
	}

	return nil
}

// PredictProba returns the positive-class probability for every row
func (c *Classifier) PredictProba(X [][]float64) ([]float64, error) {
	if !c.IsFitted() {
		return nil, apperrors.NewModelError("classifier is not fitted", nil)
	}

	probs := make([]float64, len(X))
	for i, row := range X {
		if len(row) != c.NFeatures {
			return nil, apperrors.NewValidationError("feature count mismatch").
				WithContext("expected", c.NFeatures).
				WithContext("got", len(row))
		}
		raw := c.BaseScore
		for t := range c.Trees {
			raw += c.Trees[t].Predict(row)
		}
		probs[i] = sigmoid(raw)
	}
	return probs, nil
}

// FeatureImportance returns the total split gain accumulated per feature
// index across all trees
func (c *Classifier) FeatureImportance() map[int]float64 {
	importance := make(map[int]float64)
	for _, tree := range c.Trees {
		for _, n := range tree.Nodes {
			if !n.IsLeaf() {
				importance[n.Feature] += n.Gain
			}
		}
	}
	return importance
}

// sampleIndices draws a sorted sample of floor(n*fraction) indices without
// replacement; fraction 1 returns every index
func sampleIndices(n int, fraction float64, rng *rand.Rand) []int {
	if fraction >= 1 {
		return indexRangeN(n)
	}
	k := int(float64(n) * fraction)
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)[:k]
	// Sorted order keeps histogram accumulation cache-friendly and the
	// build deterministic
	sort.Ints(perm)
	return perm
}

func indexRangeN(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

func clampProb(p float64) float64 {
	const eps = 1e-6
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}

func meanOf(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}
