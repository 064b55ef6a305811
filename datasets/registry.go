package datasets

import (
	"fmt"
	"math/rand/v2"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/registry"
	"github.com/neurlang/trainkit/transforms"
)

// Options is what a dataset constructor receives.
type Options struct {
	// Train selects the training partition of the source, otherwise the held-out test partition.
	Train bool

	Transform transforms.Transform

	// Args is the trainset or testset section of the experiment.
	Args config.Args
}

// Constructor builds one partition of a dataset.
type Constructor func(opts Options) (Dataset, error)

// Registry holds dataset constructors by name.
type Registry = registry.Registry[Constructor]

// NewRegistry returns a registry with the synthetic dataset. File backed datasets live in
// subpackages and are added by whoever wires the default registries.
func NewRegistry() *Registry {
	r := registry.New[Constructor]("dataset")
	r.MustRegister("synthetic", NewSynthetic)
	return r
}

// Build resolves name and constructs one partition.
func Build(reg *Registry, name string, opts Options) (Dataset, error) {
	ctor, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	ds, err := ctor(opts)
	if err != nil {
		part := "test"
		if opts.Train {
			part = "train"
		}
		return nil, fmt.Errorf("dataset %s (%s): %w", name, part, err)
	}
	return ds, nil
}

// Splits are the three views handed to the loaders.
type Splits struct {
	Train      Dataset
	Validation Dataset // nil when validation is disabled
	Test       Dataset

	TrainSize      int
	ValidationSize int

	// Digest fingerprints the sample order of Train.
	Digest string
}

// BuildSplits constructs the total-train and test partitions and carves validation out of
// total-train. The partition is always drawn from rng; with validation disabled it is
// discarded and Train is the whole total-train partition.
func BuildSplits(reg *Registry, tfReg *transforms.Registry, spec config.DatasetSpec, rng *rand.Rand) (*Splits, error) {
	ctor, err := reg.Lookup(spec.Name)
	if err != nil {
		return nil, err
	}
	base, err := transforms.Build(tfReg, spec.BaseTransforms)
	if err != nil {
		return nil, fmt.Errorf("base_transforms: %w", err)
	}
	trainTf := base
	if spec.Aug {
		if trainTf, err = transforms.Build(tfReg, spec.AugTransforms); err != nil {
			return nil, fmt.Errorf("aug_transforms: %w", err)
		}
	}

	total, err := ctor(Options{Train: true, Transform: trainTf, Args: spec.TrainSet})
	if err != nil {
		return nil, fmt.Errorf("dataset %s (train): %w", spec.Name, err)
	}
	test, err := ctor(Options{Train: false, Transform: base, Args: spec.TestSet})
	if err != nil {
		return nil, fmt.Errorf("dataset %s (test): %w", spec.Name, err)
	}

	train, validation, err := RandomSplit(total, spec.TrainValidSplit, rng)
	if err != nil {
		return nil, err
	}
	if !spec.UseValidation {
		return &Splits{Train: total, Test: test, TrainSize: total.Len(), Digest: Digest(total)}, nil
	}
	validation.Rebind(base)
	return &Splits{
		Train:          train,
		Validation:     validation,
		Test:           test,
		TrainSize:      train.Len(),
		ValidationSize: validation.Len(),
		Digest:         train.Digest(),
	}, nil
}
