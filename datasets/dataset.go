// Package datasets defines the dataset contract, the dataset registry and the
// train/validation/test split orchestration.
package datasets

import (
	"fmt"
	"math/rand/v2"

	"github.com/neurlang/trainkit/tensor"
	"github.com/neurlang/trainkit/transforms"
)

// Sample is one transformed input with its class label.
type Sample struct {
	Input tensor.Tensor
	Label int
}

// Dataset is an indexable, ordered collection of labelled samples with an attached transform.
type Dataset interface {
	Len() int

	// Raw returns sample i before the transform.
	Raw(i int) (tensor.Tensor, error)

	Label(i int) int
	NumClasses() int
	Transform() transforms.Transform

	// ClassWeight is the per-class loss weight, nil when the dataset has none.
	ClassWeight() []float32
}

// Get reads sample i and applies the dataset transform with rng.
func Get(ds Dataset, i int, rng *rand.Rand) (Sample, error) {
	if i < 0 || i >= ds.Len() {
		return Sample{}, fmt.Errorf("sample %d out of range [0, %d)", i, ds.Len())
	}
	x, err := ds.Raw(i)
	if err != nil {
		return Sample{}, fmt.Errorf("sample %d: %w", i, err)
	}
	tf := ds.Transform()
	if tf == nil {
		tf = transforms.Identity
	}
	if x, err = tf.Apply(x, rng); err != nil {
		return Sample{}, fmt.Errorf("sample %d: %w", i, err)
	}
	return Sample{Input: x, Label: ds.Label(i)}, nil
}

// Labels collects the label of every sample.
func Labels(ds Dataset) []int {
	out := make([]int, ds.Len())
	for i := range out {
		out[i] = ds.Label(i)
	}
	return out
}

// Memory is a dataset held fully in memory.
type Memory struct {
	inputs    []tensor.Tensor
	labels    []int
	classes   int
	transform transforms.Transform
	weight    []float32
}

// NewMemory checks that every label is in [0, classes). A nil transform is the identity.
func NewMemory(inputs []tensor.Tensor, labels []int, classes int, tf transforms.Transform) (*Memory, error) {
	if len(inputs) != len(labels) {
		return nil, fmt.Errorf("%d inputs for %d labels", len(inputs), len(labels))
	}
	for i, l := range labels {
		if l < 0 || l >= classes {
			return nil, fmt.Errorf("sample %d: label %d outside %d classes", i, l, classes)
		}
	}
	if tf == nil {
		tf = transforms.Identity
	}
	return &Memory{inputs: inputs, labels: labels, classes: classes, transform: tf}, nil
}

func (m *Memory) Len() int                        { return len(m.labels) }
func (m *Memory) Label(i int) int                 { return m.labels[i] }
func (m *Memory) NumClasses() int                 { return m.classes }
func (m *Memory) Transform() transforms.Transform { return m.transform }
func (m *Memory) ClassWeight() []float32          { return m.weight }

func (m *Memory) Raw(i int) (tensor.Tensor, error) {
	return m.inputs[i], nil
}

// SetClassWeight attaches w; nil removes it.
func (m *Memory) SetClassWeight(w []float32) error {
	if w != nil && len(w) != m.classes {
		return fmt.Errorf("%d class weights for %d classes", len(w), m.classes)
	}
	m.weight = w
	return nil
}
