package datasets

import (
	"math"
	"math/rand/v2"

	"github.com/neurlang/trainkit/config"
)

// ErrInvalidSplitRatio is matched by every split ratio outside [0, 1].
var ErrInvalidSplitRatio = config.ErrInvalidSplitRatio

type InvalidSplitRatioError = config.InvalidSplitRatioError

// SplitSizes returns floor(ratio*n) and the remainder.
func SplitSizes(n int, ratio float64) (train, validation int, err error) {
	if err := config.ValidSplitRatio(ratio); err != nil {
		return 0, 0, err
	}
	train = int(math.Floor(ratio * float64(n)))
	return train, n - train, nil
}

// RandomSplit partitions ds into two disjoint subsets covering every index once,
// of sizes SplitSizes(ds.Len(), ratio), from a single permutation drawn from rng.
func RandomSplit(ds Dataset, ratio float64, rng *rand.Rand) (train, validation *Subset, err error) {
	n := ds.Len()
	size, _, err := SplitSizes(n, ratio)
	if err != nil {
		return nil, nil, err
	}
	perm := rng.Perm(n)
	return NewSubset(ds, perm[:size:size]), NewSubset(ds, perm[size:]), nil
}
