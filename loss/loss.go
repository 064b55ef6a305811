// Package loss resolves loss functions by name, passing class weights to those that accept them.
package loss

import (
	"fmt"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/registry"
)

// Loss scores a batch of model outputs against integer class targets.
type Loss interface {
	Name() string

	// Weight is the per-class weight vector, nil when unweighted.
	Weight() []float32

	Forward(outputs [][]float32, targets []int) (float64, error)
}

// Constructor builds an unweighted loss from init_args.
type Constructor func(args config.Args) (Loss, error)

// WeightedConstructor builds a loss that scales each sample by the weight of its class.
type WeightedConstructor func(args config.Args, weight []float32) (Loss, error)

// Entry is a registered loss. An entry with NewWeighted is weighted-capable.
type Entry struct {
	New         Constructor
	NewWeighted WeightedConstructor
}

// Weighted reports whether the entry accepts a class weight vector.
func (e Entry) Weighted() bool {
	return e.NewWeighted != nil
}

// Registry holds loss entries by name.
type Registry = registry.Registry[Entry]

// NewRegistry returns a registry with cel, wcel and mse. Only wcel is weighted-capable.
func NewRegistry() *Registry {
	r := registry.New[Entry]("loss_func")
	r.MustRegister("cel", Entry{New: NewCrossEntropy})
	r.MustRegister("wcel", Entry{New: NewCrossEntropy, NewWeighted: NewWeightedCrossEntropy})
	r.MustRegister("mse", Entry{New: NewMSE})
	return r
}

// Build resolves spec.Name. A weighted-capable entry given a non-nil classWeight gets exactly
// that vector; everything else is built from init_args alone.
func Build(reg *Registry, spec config.ComponentSpec, classWeight []float32) (Loss, error) {
	e, err := reg.Lookup(spec.Name)
	if err != nil {
		return nil, err
	}
	var l Loss
	if e.Weighted() && classWeight != nil {
		l, err = e.NewWeighted(spec.Args, classWeight)
	} else {
		l, err = e.New(spec.Args)
	}
	if err != nil {
		return nil, fmt.Errorf("loss_func %s: %w", spec.Name, err)
	}
	return l, nil
}

type reduction string

const (
	mean reduction = "mean"
	sum  reduction = "sum"
)

func (r reduction) check(component string) error {
	if r != mean && r != sum {
		return config.InvalidField(component, "reduction", "must be mean or sum, got %q", string(r))
	}
	return nil
}

func checkBatch(outputs [][]float32, targets []int) error {
	if len(outputs) != len(targets) {
		return fmt.Errorf("%d outputs for %d targets", len(outputs), len(targets))
	}
	if len(outputs) == 0 {
		return fmt.Errorf("empty batch")
	}
	for i, o := range outputs {
		if targets[i] < 0 || targets[i] >= len(o) {
			return fmt.Errorf("sample %d: target %d outside %d classes", i, targets[i], len(o))
		}
	}
	return nil
}
