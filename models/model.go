// Package models resolves model specifications into parameterized model instances.
package models

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/layer"
	"github.com/neurlang/trainkit/registry"
	"github.com/neurlang/trainkit/tensor"
)

// Model is what the optimizer binds to and the training loop drives.
type Model interface {
	Name() string
	Parameters() []*tensor.Parameter
	InputShape() []int
	OutputShape() []int
}

// Sequential is a chain of layers with shapes checked at construction.
type Sequential struct {
	name   string
	kinds  []string
	params []*tensor.Parameter
	in     []int
	out    []int
}

// NewSequential lays out layers for input shape in, drawing initial weights from rng.
func NewSequential(name string, in []int, rng *rand.Rand, layers ...layer.Layer) (*Sequential, error) {
	s := &Sequential{name: name, in: append([]int(nil), in...)}
	shape := s.in
	for i, l := range layers {
		params, out, err := l.Lay(fmt.Sprintf("%d", i), shape, rng)
		if err != nil {
			return nil, fmt.Errorf("%s layer %d: %w", name, i, err)
		}
		s.kinds = append(s.kinds, l.Kind())
		s.params = append(s.params, params...)
		shape = out
	}
	s.out = shape
	return s, nil
}

func (s *Sequential) Name() string                    { return s.name }
func (s *Sequential) Parameters() []*tensor.Parameter { return s.params }
func (s *Sequential) InputShape() []int               { return s.in }
func (s *Sequential) OutputShape() []int              { return s.out }

func (s *Sequential) String() string {
	return fmt.Sprintf("%s[%s] %v->%v (%d params)", s.name, strings.Join(s.kinds, " "), s.in, s.out, tensor.Count(s.params))
}

// Constructor builds a model from its init_args.
type Constructor func(args config.Args, rng *rand.Rand) (Model, error)

// Registry holds model constructors by name.
type Registry = registry.Registry[Constructor]

// NewRegistry returns a registry with the built-in models.
func NewRegistry() *Registry {
	r := registry.New[Constructor]("model")
	r.MustRegister("linear", NewLinear)
	r.MustRegister("mlp", NewMLP)
	r.MustRegister("convnet", NewConvNet)
	return r
}

// Quantizer turns a built model into its quantized counterpart.
type Quantizer func(m Model, spec config.ModelSpec) (Model, error)

// Build resolves spec.Name, instantiates the model and, when spec.QuantModel is set,
// replaces it with whatever quantize returns.
func Build(reg *Registry, spec config.ModelSpec, rng *rand.Rand, quantize Quantizer) (Model, error) {
	ctor, err := reg.Lookup(spec.Name)
	if err != nil {
		return nil, err
	}
	m, err := ctor(spec.Args, rng)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", spec.Name, err)
	}
	if !spec.QuantModel {
		return m, nil
	}
	if quantize == nil {
		return nil, fmt.Errorf("model %s: quantization requested but no quantizer configured", spec.Name)
	}
	q, err := quantize(m, spec)
	if err != nil {
		return nil, fmt.Errorf("quantize model %s: %w", spec.Name, err)
	}
	return q, nil
}

// DataParallel replicates a model across accelerator devices.
// Parameters are shared with the wrapped model.
type DataParallel struct {
	Model
	DeviceIDs []int
}

// Parallelize wraps m for execution on ids.
func Parallelize(m Model, ids []int) *DataParallel {
	return &DataParallel{Model: m, DeviceIDs: append([]int(nil), ids...)}
}

// Unwrap returns the replicated model.
func (d *DataParallel) Unwrap() Model {
	return d.Model
}
