// Package isalnum implements the IsAlnum dataset: every byte value labelled 1 when it is an
// ASCII letter or digit. 62 of 256 samples are positive.
package isalnum

import (
	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/tensor"
)

const (
	Bits    = 8
	Classes = 2
)

type Sample byte

// Feature is the bit encoding of the byte, least significant bit first.
func (c Sample) Feature() tensor.Tensor {
	x := tensor.New(Bits)
	for j := range x.Data {
		x.Data[j] = float32((c >> j) & 1)
	}
	return x
}

func (c Sample) Output() int {
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return 1
	}
	return 0
}

// New enumerates all 256 bytes for both partitions. The only argument is class_weight.
func New(opts datasets.Options) (datasets.Dataset, error) {
	args, cw := datasets.SplitClassWeight(opts.Args)
	if err := args.Decode("isalnum", &struct{}{}); err != nil {
		return nil, err
	}
	inputs := make([]tensor.Tensor, 256)
	labels := make([]int, 256)
	for i := range inputs {
		inputs[i] = Sample(i).Feature()
		labels[i] = Sample(i).Output()
	}
	m, err := datasets.NewMemory(inputs, labels, Classes, opts.Transform)
	if err != nil {
		return nil, err
	}
	w, err := datasets.ResolveClassWeight("isalnum", cw, labels, Classes)
	if err != nil {
		return nil, err
	}
	if err := m.SetClassWeight(w); err != nil {
		return nil, err
	}
	return m, nil
}
