// Package components wires the bundled implementations into one set of registries.
package components

import (
	"sync"

	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/datasets/cifar10"
	"github.com/neurlang/trainkit/datasets/isalnum"
	"github.com/neurlang/trainkit/datasets/mnist"
	"github.com/neurlang/trainkit/datasets/squareroot"
	"github.com/neurlang/trainkit/learning"
	"github.com/neurlang/trainkit/loss"
	"github.com/neurlang/trainkit/models"
	"github.com/neurlang/trainkit/quantization"
	"github.com/neurlang/trainkit/transforms"
)

// Registries is every name to constructor table the assembler resolves against,
// plus the quantizer applied to models that ask for it.
type Registries struct {
	Datasets   *datasets.Registry
	Transforms *transforms.Registry
	Losses     *loss.Registry
	Optimizers *learning.OptimizerRegistry
	Schedulers *learning.SchedulerRegistry
	Models     *models.Registry
	Quantize   models.Quantizer
}

// NewDefault returns fresh registries holding every bundled component.
// Callers may register more entries on the result.
func NewDefault() *Registries {
	r := &Registries{
		Datasets:   datasets.NewRegistry(),
		Transforms: transforms.NewRegistry(),
		Losses:     loss.NewRegistry(),
		Optimizers: learning.NewOptimizerRegistry(),
		Schedulers: learning.NewSchedulerRegistry(),
		Models:     models.NewRegistry(),
		Quantize:   quantization.Quantize,
	}
	r.Datasets.MustRegister("cifar10", cifar10.New)
	r.Datasets.MustRegister("isalnum", isalnum.New)
	r.Datasets.MustRegister("mnist", mnist.New)
	r.Datasets.MustRegister("squareroot", squareroot.New)
	r.Optimizers.MustRegister("qsgd", quantization.NewQSGD)
	r.Optimizers.MustRegister("qadam", quantization.NewQAdam)
	return r
}

// Default is the process wide set built on first use.
var Default = sync.OnceValue(NewDefault)

// Inventory lists the registered names per registry kind.
func (r *Registries) Inventory() map[string][]string {
	return map[string][]string{
		r.Datasets.Kind():   r.Datasets.Names(),
		r.Transforms.Kind(): r.Transforms.Names(),
		r.Losses.Kind():     r.Losses.Names(),
		r.Optimizers.Kind(): r.Optimizers.Names(),
		r.Schedulers.Kind(): r.Schedulers.Names(),
		r.Models.Kind():     r.Models.Names(),
	}
}
