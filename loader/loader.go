// Package loader batches dataset samples according to a sampling policy.
package loader

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/hash"
	"github.com/neurlang/trainkit/parallel"
	"github.com/neurlang/trainkit/tensor"
)

var (
	// ErrEmptyDataset is returned for a loader over zero samples.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrNoBatches is returned when drop_last leaves no complete batch.
	ErrNoBatches = errors.New("no complete batch")
)

// Policy is the sampling order of one loader.
type Policy int

const (
	Sequential Policy = iota
	Shuffle
	Weighted
)

func (p Policy) String() string {
	switch p {
	case Sequential:
		return "sequential"
	case Shuffle:
		return "shuffle"
	case Weighted:
		return "weighted"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Config describes one loader.
type Config struct {
	BatchSize  int
	NumWorkers int
	DropLast   bool
	Policy     Policy

	// PinMemory asks for page locked batch buffers; set when the device is an accelerator.
	PinMemory bool

	// Seed drives the sampler and the per-sample transform randomness.
	Seed uint64
}

// Batch is one materialized batch.
type Batch struct {
	// Index is the batch position within the epoch.
	Index int

	// Indices are the dataset indices of the samples.
	Indices []int

	Inputs []tensor.Tensor
	Labels []int
}

// Loader walks a dataset in batches.
type Loader struct {
	ds      datasets.Dataset
	cfg     Config
	sampler Sampler
	log     *zap.Logger
}

// New checks cfg against ds and picks the sampler for cfg.Policy.
func New(ds datasets.Dataset, cfg Config) (*Loader, error) {
	if cfg.BatchSize <= 0 {
		return nil, config.InvalidField("train", "batch_size", "must be positive, got %d", cfg.BatchSize)
	}
	if cfg.NumWorkers < 0 {
		return nil, config.InvalidField("train", "num_worker", "must not be negative, got %d", cfg.NumWorkers)
	}
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if cfg.DropLast && ds.Len() < cfg.BatchSize {
		return nil, fmt.Errorf("%w: %d samples, batch size %d", ErrNoBatches, ds.Len(), cfg.BatchSize)
	}
	l := &Loader{ds: ds, cfg: cfg, log: zap.NewNop()}
	switch cfg.Policy {
	case Sequential:
		l.sampler = NewSequentialSampler(ds.Len())
	case Shuffle:
		l.sampler = NewRandomSampler(ds.Len(), cfg.Seed)
	case Weighted:
		s, err := NewWeightedSampler(ds, cfg.Seed)
		if err != nil {
			return nil, err
		}
		l.sampler = s
	default:
		return nil, fmt.Errorf("unknown sampling policy %v", cfg.Policy)
	}
	return l, nil
}

func (l *Loader) Dataset() datasets.Dataset { return l.ds }
func (l *Loader) Config() Config            { return l.cfg }
func (l *Loader) Sampler() Sampler          { return l.sampler }

// Len is the number of batches per epoch.
func (l *Loader) Len() int {
	n := l.sampler.Len()
	if l.cfg.DropLast {
		return n / l.cfg.BatchSize
	}
	return (n + l.cfg.BatchSize - 1) / l.cfg.BatchSize
}

// Iterate materializes every batch of epoch and hands them to fn in order.
// Samples are read and transformed by up to NumWorkers goroutines (inline when zero);
// sample k of the epoch is transformed with a random source seeded from (Seed, epoch, k),
// so batches do not depend on the worker count or scheduling.
func (l *Loader) Iterate(ctx context.Context, epoch int, fn func(Batch) error) error {
	order := l.sampler.Indices(epoch)
	workers := max(l.cfg.NumWorkers, 1)
	l.log.Debug("epoch", zap.Int("epoch", epoch), zap.Int("batches", l.Len()), zap.Int("workers", workers))
	for b := 0; b < l.Len(); b++ {
		lo := b * l.cfg.BatchSize
		hi := min(lo+l.cfg.BatchSize, len(order))
		batch := Batch{
			Index:   b,
			Indices: order[lo:hi:hi],
			Inputs:  make([]tensor.Tensor, hi-lo),
			Labels:  make([]int, hi-lo),
		}
		err := parallel.ForEach(ctx, hi-lo, workers, func(i int) error {
			k := lo + i
			rng := rand.New(rand.NewPCG(hash.Seed(l.cfg.Seed, uint32(epoch), uint32(k)), uint64(k)))
			s, err := datasets.Get(l.ds, order[k], rng)
			if err != nil {
				return err
			}
			batch.Inputs[i], batch.Labels[i] = s.Input, s.Label
			return nil
		})
		if err != nil {
			return fmt.Errorf("epoch %d batch %d: %w", epoch, b, err)
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}

// Options are the loader settings shared by the three splits.
type Options struct {
	BatchSize  int
	NumWorkers int
	DropLast   bool

	TrainWeighted bool
	TestWeighted  bool

	PinMemory bool
	Seed      uint64
	Logger    *zap.Logger
}

// Loaders holds one loader per split. Validation is nil when there is no validation split.
type Loaders struct {
	Train      *Loader
	Validation *Loader
	Test       *Loader
}

// BuildAll picks the policy per split: train is weighted or shuffled, validation is always
// sequential, test is weighted or sequential. Each split draws from its own seed.
func BuildAll(train, validation, test datasets.Dataset, opts Options) (*Loaders, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	build := func(split string, id uint32, ds datasets.Dataset, p Policy) (*Loader, error) {
		l, err := New(ds, Config{
			BatchSize:  opts.BatchSize,
			NumWorkers: opts.NumWorkers,
			DropLast:   opts.DropLast,
			Policy:     p,
			PinMemory:  opts.PinMemory,
			Seed:       hash.Seed(opts.Seed, id),
		})
		if err != nil {
			return nil, fmt.Errorf("%s loader: %w", split, err)
		}
		l.log = log.With(zap.String("split", split))
		l.log.Debug("built loader", zap.Stringer("policy", p), zap.Int("samples", ds.Len()), zap.Int("batches", l.Len()))
		return l, nil
	}

	var (
		out = &Loaders{}
		err error
	)
	trainPolicy := Shuffle
	if opts.TrainWeighted {
		trainPolicy = Weighted
	}
	if out.Train, err = build("train", 1, train, trainPolicy); err != nil {
		return nil, err
	}
	if validation != nil {
		if out.Validation, err = build("validation", 2, validation, Sequential); err != nil {
			return nil, err
		}
	}
	testPolicy := Sequential
	if opts.TestWeighted {
		testPolicy = Weighted
	}
	if out.Test, err = build("test", 3, test, testPolicy); err != nil {
		return nil, err
	}
	return out, nil
}
