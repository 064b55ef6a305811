package trainer

import (
	"math/rand/v2"

	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/device"
	"github.com/neurlang/trainkit/learning"
	"github.com/neurlang/trainkit/loader"
	"github.com/neurlang/trainkit/loss"
	"github.com/neurlang/trainkit/models"
)

// Configs is the assembled pipeline.
type Configs struct {
	// RunID identifies this assembly in logs and result paths.
	RunID string

	Device    device.Device
	Model     models.Model
	Optimizer learning.Optimizer
	Scheduler learning.Scheduler
	Loss      loss.Loss

	// UseLossMetric is set when the scheduler steps on a monitored metric.
	UseLossMetric bool

	TrainSet      datasets.Dataset
	ValidationSet datasets.Dataset // nil without validation
	TestSet       datasets.Dataset

	TrainLoader      *loader.Loader
	ValidationLoader *loader.Loader // nil without validation
	TestLoader       *loader.Loader

	// SplitDigest fingerprints the train sample order.
	SplitDigest string

	Trainer        string
	BatchSize      int
	NumEpoch       int
	ResultDir      string
	ModelSrcPath   string
	ResumeFromBest bool
	PrintFreq      int

	// EvalModel is set when the run only evaluates.
	EvalModel bool

	// Metric selects the checkpoint kept as best.
	Metric string

	Seed int64

	// Rand is the random source reserved for the training loop.
	Rand *rand.Rand
}
