// Package split provides time-respecting partitioning for model training:
// a trailing-fraction train/test split over distinct dates and an
// expanding-window cross-validation splitter. Nothing here ever shuffles.
package split

import (
	"sort"
	"time"

	apperrors "agroforecast/internal/errors"
)

// Fold is one expanding-window cross-validation fold. The validation block
// always follows the training block in time.
type Fold struct {
	TrainIdx []int
	ValIdx   []int
}

// TrainTestSplit partitions row indices by date: the trailing testSize
// fraction of distinct dates becomes the test set, the rest the train set.
// A date is indivisible, so no date ever straddles both partitions. Rows
// must be in any order; membership is decided per row by its date.
func TrainTestSplit(dates []time.Time, testSize float64) (trainIdx, testIdx []int, err error) {
	if len(dates) == 0 {
		return nil, nil, apperrors.NewValidationError("no dates to split")
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, apperrors.NewValidationError("test size must be in (0, 1)").
			WithContext("test_size", testSize)
	}

	distinct := distinctSorted(dates)
	splitAt := int(float64(len(distinct)) * (1 - testSize))
	if splitAt == 0 || splitAt == len(distinct) {
		return nil, nil, apperrors.NewValidationError("not enough distinct dates for the requested split").
			WithContext("distinct_dates", len(distinct)).
			WithContext("test_size", testSize)
	}

	testDates := make(map[time.Time]struct{}, len(distinct)-splitAt)
	for _, d := range distinct[splitAt:] {
		testDates[d] = struct{}{}
	}

	for i, d := range dates {
		if _, ok := testDates[d]; ok {
			testIdx = append(testIdx, i)
		} else {
			trainIdx = append(trainIdx, i)
		}
	}

	return trainIdx, testIdx, nil
}

// TimeSeriesSplit produces k expanding-window folds over n chronologically
// ordered samples. Each fold validates on the block immediately after its
// training block; training blocks grow monotonically across folds.
func TimeSeriesSplit(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, apperrors.NewValidationError("need at least 2 folds").
			WithContext("folds", k)
	}
	if n < k+1 {
		return nil, apperrors.NewValidationError("not enough samples for the requested folds").
			WithContext("samples", n).
			WithContext("folds", k)
	}

	blockSize := n / (k + 1)
	folds := make([]Fold, 0, k)
	for i := 0; i < k; i++ {
		valStart := n - (k-i)*blockSize
		valEnd := valStart + blockSize
		if i == k-1 {
			valEnd = n // last fold absorbs the remainder
		}

		fold := Fold{
			TrainIdx: indexRange(0, valStart),
			ValIdx:   indexRange(valStart, valEnd),
		}
		folds = append(folds, fold)
	}

	return folds, nil
}

func indexRange(start, end int) []int {
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}

func distinctSorted(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	var distinct []time.Time
	for _, d := range dates {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			distinct = append(distinct, d)
		}
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i].Before(distinct[j]) })
	return distinct
}
