// Package boost implements histogram-based gradient-boosted trees with a
// binary logistic objective. It is the probabilistic classifier capability
// behind the multi-label trainer: fit on a feature matrix, produce
// per-sample class probabilities. Missing feature values (NaN) are routed
// down a per-split learned default direction, and training is deterministic
// for a fixed seed.
package boost

// Params holds the booster hyperparameters
type Params struct {
	Rounds          int     `json:"rounds"`            // number of boosting rounds (trees)
	MaxDepth        int     `json:"max_depth"`         // maximum tree depth
	LearningRate    float64 `json:"learning_rate"`     // shrinkage applied to each leaf weight
	Subsample       float64 `json:"subsample"`         // row fraction sampled per tree
	ColsampleByTree float64 `json:"colsample_by_tree"` // feature fraction sampled per tree
	RegAlpha        float64 `json:"reg_alpha"`         // L1 regularization on leaf weights
	RegLambda       float64 `json:"reg_lambda"`        // L2 regularization on leaf weights
	MaxBins         int     `json:"max_bins"`          // histogram bins per feature
	MinChildWeight  float64 `json:"min_child_weight"`  // minimum hessian sum per child
	Seed            int64   `json:"seed"`
}

// DefaultParams returns the reference configuration
func DefaultParams() Params {
	return Params{
		Rounds:          200,
		MaxDepth:        6,
		LearningRate:    0.01,
		Subsample:       0.9,
		ColsampleByTree: 0.9,
		RegAlpha:        0.1,
		RegLambda:       1.0,
		MaxBins:         256,
		MinChildWeight:  1.0,
		Seed:            242,
	}
}

// IsValid checks the hyperparameters
func (p Params) IsValid() bool {
	return p.Rounds > 0 &&
		p.MaxDepth > 0 &&
		p.LearningRate > 0 &&
		p.Subsample > 0 && p.Subsample <= 1 &&
		p.ColsampleByTree > 0 && p.ColsampleByTree <= 1 &&
		p.RegAlpha >= 0 && p.RegLambda >= 0 &&
		p.MaxBins >= 2 &&
		p.MinChildWeight >= 0
}
