// Package learning holds the optimizers and learning-rate schedulers and resolves them by name.
package learning

import (
	"errors"
	"fmt"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/models"
	"github.com/neurlang/trainkit/registry"
	"github.com/neurlang/trainkit/tensor"
)

// ErrDependencyNotReady is returned when a component is requested before the one it binds to.
var ErrDependencyNotReady = errors.New("dependency not ready")

// Optimizer updates a fixed set of parameters from their gradients.
type Optimizer interface {
	Name() string
	Parameters() []*tensor.Parameter
	LR() float64
	SetLR(lr float64)
	ZeroGrad()
	Step() error
}

// OptimizerConstructor binds a new optimizer to params.
type OptimizerConstructor func(params []*tensor.Parameter, args config.Args) (Optimizer, error)

// OptimizerRegistry holds optimizer constructors by name.
type OptimizerRegistry = registry.Registry[OptimizerConstructor]

// NewOptimizerRegistry returns a registry with sgd and adam.
func NewOptimizerRegistry() *OptimizerRegistry {
	r := registry.New[OptimizerConstructor]("optimizer")
	r.MustRegister("sgd", NewSGD)
	r.MustRegister("adam", NewAdam)
	return r
}

// BuildOptimizer resolves spec.Name and binds the optimizer to the model parameters.
func BuildOptimizer(reg *OptimizerRegistry, model models.Model, spec config.ComponentSpec) (Optimizer, error) {
	if model == nil {
		return nil, fmt.Errorf("optimizer %s: model: %w", spec.Name, ErrDependencyNotReady)
	}
	ctor, err := reg.Lookup(spec.Name)
	if err != nil {
		return nil, err
	}
	opt, err := ctor(model.Parameters(), spec.Args)
	if err != nil {
		return nil, fmt.Errorf("optimizer %s: %w", spec.Name, err)
	}
	return opt, nil
}

// base carries what every optimizer shares.
type base struct {
	name   string
	params []*tensor.Parameter
	lr     float64
}

func (b *base) Name() string                    { return b.name }
func (b *base) Parameters() []*tensor.Parameter { return b.params }
func (b *base) LR() float64                     { return b.lr }
func (b *base) SetLR(lr float64)                { b.lr = lr }

func (b *base) ZeroGrad() {
	for _, p := range b.params {
		p.ZeroGrad()
	}
}

func checkGrad(p *tensor.Parameter) error {
	if p.Grad != nil && len(p.Grad) != len(p.Data) {
		return fmt.Errorf("parameter %s: gradient length %d, data length %d", p.Name, len(p.Grad), len(p.Data))
	}
	return nil
}
