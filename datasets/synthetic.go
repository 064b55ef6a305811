package datasets

import (
	"math/rand/v2"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/hash"
	"github.com/neurlang/trainkit/tensor"
)

type syntheticOptions struct {
	NumSamples int     `yaml:"num_samples"`
	NumClasses int     `yaml:"num_classes"`
	Shape      []int   `yaml:"shape"`
	Noise      float64 `yaml:"noise"`
	Seed       uint64  `yaml:"seed"`
}

// NewSynthetic generates Gaussian clusters, one center per class, labels assigned round robin.
// Train and test partitions share the centers and differ in their noise.
// Defaults: 1000 train or 200 test samples, 10 classes, shape [3 8 8], noise 0.5.
func NewSynthetic(opts Options) (Dataset, error) {
	args, cw := SplitClassWeight(opts.Args)
	o := syntheticOptions{NumSamples: 200, NumClasses: 10, Shape: []int{3, 8, 8}, Noise: 0.5}
	if opts.Train {
		o.NumSamples = 1000
	}
	if err := args.Decode("synthetic", &o); err != nil {
		return nil, err
	}
	switch {
	case o.NumSamples < 0:
		return nil, config.InvalidField("synthetic", "num_samples", "must not be negative, got %d", o.NumSamples)
	case o.NumClasses <= 0:
		return nil, config.InvalidField("synthetic", "num_classes", "must be positive, got %d", o.NumClasses)
	case tensor.Volume(o.Shape) <= 0:
		return nil, config.InvalidField("synthetic", "shape", "%v is empty", o.Shape)
	}

	dim := tensor.Volume(o.Shape)
	centers := make([][]float32, o.NumClasses)
	for c := range centers {
		rng := rand.New(rand.NewPCG(hash.Seed(o.Seed, 0, uint32(c)), uint64(c)))
		centers[c] = make([]float32, dim)
		for j := range centers[c] {
			centers[c][j] = float32(rng.NormFloat64())
		}
	}

	part := uint32(2)
	if opts.Train {
		part = 1
	}
	rng := rand.New(rand.NewPCG(hash.Seed(o.Seed, part), uint64(part)))
	inputs := make([]tensor.Tensor, o.NumSamples)
	labels := make([]int, o.NumSamples)
	for i := range inputs {
		labels[i] = i % o.NumClasses
		x := tensor.New(o.Shape...)
		for j := range x.Data {
			x.Data[j] = centers[labels[i]][j] + float32(o.Noise*rng.NormFloat64())
		}
		inputs[i] = x
	}

	m, err := NewMemory(inputs, labels, o.NumClasses, opts.Transform)
	if err != nil {
		return nil, err
	}
	w, err := ResolveClassWeight("synthetic", cw, labels, o.NumClasses)
	if err != nil {
		return nil, err
	}
	if err := m.SetClassWeight(w); err != nil {
		return nil, err
	}
	return m, nil
}
