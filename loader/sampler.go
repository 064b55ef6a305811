package loader

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/hash"
)

// Sampler yields the dataset indices visited in one epoch.
type Sampler interface {
	Indices(epoch int) []int
	Len() int
}

func epochRand(seed uint64, epoch int) *rand.Rand {
	return rand.New(rand.NewPCG(hash.Seed(seed, uint32(epoch)), seed))
}

// SequentialSampler visits 0..n-1 in order every epoch.
type SequentialSampler struct {
	n int
}

func NewSequentialSampler(n int) *SequentialSampler {
	return &SequentialSampler{n: n}
}

func (s *SequentialSampler) Len() int { return s.n }

func (s *SequentialSampler) Indices(int) []int {
	out := make([]int, s.n)
	for i := range out {
		out[i] = i
	}
	return out
}

// RandomSampler visits a fresh permutation every epoch, a pure function of seed and epoch.
type RandomSampler struct {
	n    int
	seed uint64
}

func NewRandomSampler(n int, seed uint64) *RandomSampler {
	return &RandomSampler{n: n, seed: seed}
}

func (s *RandomSampler) Len() int { return s.n }

func (s *RandomSampler) Indices(epoch int) []int {
	return epochRand(s.seed, epoch).Perm(s.n)
}

// WeightedSampler draws Len indices with replacement, each with probability
// proportional to the inverse frequency of its label, so every class is drawn
// about equally often.
type WeightedSampler struct {
	cdf  []float64
	seed uint64
}

// NewWeightedSampler derives the sample weights from the label distribution of ds.
func NewWeightedSampler(ds datasets.Dataset, seed uint64) (*WeightedSampler, error) {
	tally := datasets.TallyLabels(ds)
	if tally.Len() != ds.Len() {
		return nil, fmt.Errorf("weighted sampler: %d of %d labels outside %d classes", ds.Len()-tally.Len(), ds.Len(), ds.NumClasses())
	}
	counts := tally.Counts()
	cdf := make([]float64, ds.Len())
	var acc float64
	for i := range cdf {
		acc += 1 / float64(counts[ds.Label(i)])
		cdf[i] = acc
	}
	return &WeightedSampler{cdf: cdf, seed: seed}, nil
}

func (s *WeightedSampler) Len() int { return len(s.cdf) }

func (s *WeightedSampler) Indices(epoch int) []int {
	out := make([]int, len(s.cdf))
	if len(out) == 0 {
		return out
	}
	rng := epochRand(s.seed, epoch)
	total := s.cdf[len(s.cdf)-1]
	for i := range out {
		u := rng.Float64() * total
		j := sort.SearchFloat64s(s.cdf, u)
		// SearchFloat64s finds the first cdf >= u; u equal to a bound belongs to the next sample
		if j < len(s.cdf) && s.cdf[j] == u {
			j++
		}
		out[i] = min(j, len(s.cdf)-1)
	}
	return out
}
