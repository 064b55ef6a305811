package trainer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neurlang/trainkit/components"
	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/device"
	"github.com/neurlang/trainkit/hash"
	"github.com/neurlang/trainkit/learning"
	"github.com/neurlang/trainkit/loader"
	"github.com/neurlang/trainkit/loss"
	"github.com/neurlang/trainkit/models"
)

// random streams derived from the experiment seed
const (
	streamModel uint32 = iota + 1
	streamSplit
	streamLoader
	streamTrain
)

func stream(seed int64, id uint32) *rand.Rand {
	return rand.New(rand.NewPCG(hash.Seed(uint64(seed), id), uint64(id)))
}

// stageError marks which assembly stage failed.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

// Stage returns the name of the assembly stage err was raised in, or "".
func Stage(err error) string {
	var se *stageError
	if errors.As(err, &se) {
		return se.stage
	}
	return ""
}

// Setup builds the pipeline described by exp from regs, or from components.Default when
// regs is nil. It either returns a complete Configs or nil and an error naming the failed stage.
func Setup(exp *config.Experiment, regs *components.Registries, opts ...Option) (*Configs, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if regs == nil {
		regs = components.Default()
	}
	if o.quantize == nil {
		o.quantize = regs.Quantize
	}

	start := time.Now()
	c, err := setup(exp, regs, &o)
	if err != nil {
		stage := Stage(err)
		o.recorder.AssemblyFailed(stage)
		o.log.Error("assembly failed", zap.String("stage", stage), zap.Error(err))
		return nil, err
	}
	o.recorder.AssemblyDone(time.Since(start))
	o.log.Info("pipeline assembled",
		zap.String("run_id", c.RunID),
		zap.Stringer("device", c.Device),
		zap.String("model", c.Model.Name()),
		zap.Duration("took", time.Since(start)))
	return c, nil
}

func setup(exp *config.Experiment, regs *components.Registries, o *options) (*Configs, error) {
	fail := func(stage string, err error) (*Configs, error) {
		return nil, &stageError{stage: stage, err: err}
	}
	if exp == nil {
		return fail("validate", fmt.Errorf("%w: no experiment", config.ErrConfiguration))
	}
	if err := exp.Validate(); err != nil {
		return fail("validate", err)
	}

	// every stream exists before anything random happens
	var (
		modelRand  = stream(exp.Seed, streamModel)
		splitRand  = stream(exp.Seed, streamSplit)
		loaderSeed = hash.Seed(uint64(exp.Seed), streamLoader)
		trainRand  = stream(exp.Seed, streamTrain)
	)
	c := &Configs{RunID: uuid.NewString()}
	log := o.log.With(zap.String("run_id", c.RunID))

	var err error
	if c.Device, err = device.Resolve(exp.Device, log); err != nil {
		return fail("resolve device", err)
	}
	log.Debug("device", zap.Stringer("device", c.Device), zap.String("name", c.Device.Name), zap.Strings("features", c.Device.Features))

	if c.Model, err = models.Build(regs.Models, exp.Model, modelRand, o.quantize); err != nil {
		return fail("build model", err)
	}
	o.recorder.ComponentBuilt(regs.Models.Kind(), exp.Model.Name)
	if c.Device.IsAccelerator() && c.Device.Parallel {
		ids, err := device.ParallelIDs(c.Device)
		if err != nil {
			return fail("build model", err)
		}
		c.Model = models.Parallelize(c.Model, ids)
	}
	log.Debug("model", zap.String("name", c.Model.Name()), zap.Ints("input", c.Model.InputShape()), zap.Ints("output", c.Model.OutputShape()))

	if c.Optimizer, err = learning.BuildOptimizer(regs.Optimizers, c.Model, exp.Optimizer); err != nil {
		return fail("build optimizer", err)
	}
	o.recorder.ComponentBuilt(regs.Optimizers.Kind(), exp.Optimizer.Name)

	if c.Scheduler, err = learning.BuildScheduler(regs.Schedulers, c.Optimizer, exp.LRScheduler); err != nil {
		return fail("build lr_scheduler", err)
	}
	o.recorder.ComponentBuilt(regs.Schedulers.Kind(), exp.LRScheduler.Name)
	c.UseLossMetric = c.Scheduler.UsesMetric()

	splits, err := datasets.BuildSplits(regs.Datasets, regs.Transforms, exp.Dataset, splitRand)
	if err != nil {
		return fail("build datasets", err)
	}
	o.recorder.ComponentBuilt(regs.Datasets.Kind(), exp.Dataset.Name)
	c.TrainSet, c.ValidationSet, c.TestSet = splits.Train, splits.Validation, splits.Test
	c.SplitDigest = splits.Digest
	o.recorder.SplitSizes(splits.TrainSize, splits.ValidationSize, splits.Test.Len())
	if exp.Dataset.UseValidation {
		log.Info("splitting validation dataset",
			zap.Int("train", splits.TrainSize),
			zap.Int("validation", splits.ValidationSize),
			zap.Int("test", splits.Test.Len()))
	} else {
		log.Info("using whole train dataset", zap.Int("train", splits.TrainSize), zap.Int("test", splits.Test.Len()))
	}

	t := exp.Train
	loaders, err := loader.BuildAll(c.TrainSet, c.ValidationSet, c.TestSet, loader.Options{
		BatchSize:     t.BatchSize,
		NumWorkers:    t.NumWorker,
		DropLast:      t.DropLastBatch,
		TrainWeighted: t.UseTrainWeightedSampler,
		TestWeighted:  t.UseTestWeightedSampler,
		PinMemory:     c.Device.IsAccelerator(),
		Seed:          loaderSeed,
		Logger:        log,
	})
	if err != nil {
		return fail("build loaders", err)
	}
	c.TrainLoader, c.ValidationLoader, c.TestLoader = loaders.Train, loaders.Validation, loaders.Test

	if c.Loss, err = loss.Build(regs.Losses, exp.LossFunc, c.TrainSet.ClassWeight()); err != nil {
		return fail("build loss", err)
	}
	o.recorder.ComponentBuilt(regs.Losses.Kind(), exp.LossFunc.Name)
	log.Debug("loss", zap.String("name", c.Loss.Name()), zap.Bool("weighted", c.Loss.Weight() != nil))

	c.Trainer = t.Trainer
	c.BatchSize = t.BatchSize
	c.NumEpoch = t.NumEpoch
	c.ResultDir = t.ResultDir
	c.ModelSrcPath = t.ModelSrcPath
	c.ResumeFromBest = t.ResumeFromBest
	c.PrintFreq = t.PrintFreq
	c.EvalModel = !t.Training()
	c.Metric = t.SaveModelBy
	c.Seed = exp.Seed
	c.Rand = trainRand
	return c, nil
}
