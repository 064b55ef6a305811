// Package squareroot provides a synthetic dataset for learning to compute integer square roots.
// Label k covers the 2k+1 integers from k*k to (k+1)*(k+1)-1, so classes are naturally imbalanced,
// which makes it a fixture for weighted sampling and weighted losses.
package squareroot

import (
	"math"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/tensor"
)

// Sizes in input bits.
const (
	Small  = 8
	Medium = 10
	Big    = 12
	Huge   = 14
)

var sizes = map[string]int{"small": Small, "medium": Medium, "big": Big, "huge": Huge}

type Sample uint32

// Feature is the binary encoding of the sample, least significant bit first.
func (s Sample) Feature(bits int) tensor.Tensor {
	x := tensor.New(bits)
	for j := range x.Data {
		x.Data[j] = float32((uint32(s) >> j) & 1)
	}
	return x
}

func (s Sample) Output() int {
	return int(math.Sqrt(float64(s)))
}

// Classes is the number of distinct roots below 1<<bits.
func Classes(bits int) int {
	return Sample(1<<bits-1).Output() + 1
}

type options struct {
	Size string `yaml:"size"`
}

// New enumerates every integer below 1<<bits. Both partitions hold the whole domain;
// the function is learnt, not generalized.
func New(opts datasets.Options) (datasets.Dataset, error) {
	args, cw := datasets.SplitClassWeight(opts.Args)
	o := options{Size: "small"}
	if err := args.Decode("squareroot", &o); err != nil {
		return nil, err
	}
	bits, ok := sizes[o.Size]
	if !ok {
		return nil, config.InvalidField("squareroot", "size", "must be small, medium, big or huge, got %q", o.Size)
	}
	n := 1 << bits
	inputs := make([]tensor.Tensor, n)
	labels := make([]int, n)
	for i := range inputs {
		inputs[i] = Sample(i).Feature(bits)
		labels[i] = Sample(i).Output()
	}
	classes := Classes(bits)
	m, err := datasets.NewMemory(inputs, labels, classes, opts.Transform)
	if err != nil {
		return nil, err
	}
	w, err := datasets.ResolveClassWeight("squareroot", cw, labels, classes)
	if err != nil {
		return nil, err
	}
	if err := m.SetClassWeight(w); err != nil {
		return nil, err
	}
	return m, nil
}
