package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks presence and range of every field the assembler relies on.
// All problems are reported together.
func (e *Experiment) Validate() error {
	var err error
	add := func(e error) { err = multierr.Append(err, e) }

	for _, slot := range [...]struct{ name, value string }{
		{"model", e.Model.Name},
		{"optimizer", e.Optimizer.Name},
		{"lr_scheduler", e.LRScheduler.Name},
		{"loss_func", e.LossFunc.Name},
		{"dataset", e.Dataset.Name},
	} {
		if slot.value == "" {
			add(MissingField(slot.name, "name"))
		}
	}
	if e.Device.UseGPU && e.Device.GPUID < 0 {
		add(InvalidField("device", "gpu_id", "must be >= 0, got %d", e.Device.GPUID))
	}
	if b := e.Model.QuantArgs.BitsOrDefault(); e.Model.QuantModel && (b < 1 || b > 16) {
		add(InvalidField("model", "quant_args.bits", "must be between 1 and 16, got %d", b))
	}

	d := e.Dataset
	add(ValidSplitRatio(d.TrainValidSplit))
	for i, t := range d.BaseTransforms {
		if t.Name == "" {
			add(MissingField(fmt.Sprintf("dataset.base_transforms[%d]", i), "name"))
		}
	}
	for i, t := range d.AugTransforms {
		if t.Name == "" {
			add(MissingField(fmt.Sprintf("dataset.aug_transforms[%d]", i), "name"))
		}
	}

	t := e.Train
	if t.BatchSize <= 0 {
		add(InvalidField("train", "batch_size", "must be positive, got %d", t.BatchSize))
	}
	if t.NumWorker < 0 {
		add(InvalidField("train", "num_worker", "must be >= 0, got %d", t.NumWorker))
	}
	if t.NumEpoch < 0 {
		add(InvalidField("train", "num_epoch", "must be >= 0, got %d", t.NumEpoch))
	}
	if t.PrintFreq < 0 {
		add(InvalidField("train", "print_freq", "must be >= 0, got %d", t.PrintFreq))
	}
	return err
}
