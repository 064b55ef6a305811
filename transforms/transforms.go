// Package transforms composes named preprocessing steps into a single sample transform.
package transforms

import (
	"fmt"
	"math/rand/v2"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/registry"
	"github.com/neurlang/trainkit/tensor"
)

// Transform maps one sample to another. Implementations never mutate x;
// random steps draw only from rng.
type Transform interface {
	Apply(x tensor.Tensor, rng *rand.Rand) (tensor.Tensor, error)
}

// Func adapts a function to Transform.
type Func func(x tensor.Tensor, rng *rand.Rand) (tensor.Tensor, error)

func (f Func) Apply(x tensor.Tensor, rng *rand.Rand) (tensor.Tensor, error) {
	return f(x, rng)
}

// Compose applies its steps in order.
type Compose []Transform

func (c Compose) Apply(x tensor.Tensor, rng *rand.Rand) (tensor.Tensor, error) {
	var err error
	for i, t := range c {
		if x, err = t.Apply(x, rng); err != nil {
			return tensor.Tensor{}, fmt.Errorf("transform step %d: %w", i, err)
		}
	}
	return x, nil
}

// Identity returns its input unchanged.
var Identity Transform = Compose(nil)

// Constructor builds a transform from its init_args.
type Constructor func(args config.Args) (Transform, error)

// Registry holds transform constructors by name.
type Registry = registry.Registry[Constructor]

// NewRegistry returns a registry with the built-in transforms.
func NewRegistry() *Registry {
	r := registry.New[Constructor]("transform")
	r.MustRegister("to_tensor", NewToTensor)
	r.MustRegister("normalize", NewNormalize)
	r.MustRegister("random_horizontal_flip", NewRandomHorizontalFlip)
	r.MustRegister("random_crop", NewRandomCrop)
	r.MustRegister("flatten", NewFlatten)
	return r
}

// Build resolves every spec and chains the results in listed order.
// An empty list yields Identity.
func Build(reg *Registry, specs []config.ComponentSpec) (Transform, error) {
	if len(specs) == 0 {
		return Identity, nil
	}
	steps := make(Compose, 0, len(specs))
	for _, s := range specs {
		ctor, err := reg.Lookup(s.Name)
		if err != nil {
			return nil, err
		}
		t, err := ctor(s.Args)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", s.Name, err)
		}
		steps = append(steps, t)
	}
	return steps, nil
}
