package config_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"k8s.io/utils/ptr"

	"github.com/neurlang/trainkit/config"
)

const cifarExperiment = `
seed: 7
device:
  use_gpu: true
  gpu_id: 1
  parallel: true
model:
  name: convnet
  init_args:
    num_classes: 10
  quant_model: true
  quant_args:
    bits: 4
optimizer:
  name: sgd
  init_args:
    lr: 0.1
    momentum: 0.9
lr_scheduler:
  name: step
  init_args:
    step_size: 30
loss_func:
  name: wcel
dataset:
  name: cifar10
  aug: true
  base_transforms:
    - name: to_tensor
    - name: normalize
      init_args:
        mean: [0.49, 0.48, 0.44]
        std: [0.24, 0.24, 0.26]
  aug_transforms:
    - name: random_crop
      init_args: {size: 32, padding: 4}
    - name: random_horizontal_flip
    - name: to_tensor
  trainset:
    root: /data/cifar
  testset:
    root: /data/cifar
  train_valid_split: 0.8
  use_validation: true
train:
  trainer: backprop
  batch_size: 128
  num_worker: 4
  drop_last_batch: false
  use_train_weighted_sampler: true
  num_epoch: 200
  result_dir: results/cifar
  resume_from_best: false
  print_freq: 50
  save_model_by: accuracy
`

func TestParseExperiment(t *testing.T) {
	exp, err := config.Parse([]byte(cifarExperiment))
	require.NoError(t, err)

	assert.Equal(t, int64(7), exp.Seed)
	assert.Equal(t, config.DeviceSpec{UseGPU: true, GPUID: 1, Parallel: true}, exp.Device)
	assert.Equal(t, "convnet", exp.Model.Name)
	assert.True(t, exp.Model.QuantModel)
	assert.Equal(t, 4, exp.Model.QuantArgs.BitsOrDefault())
	assert.Equal(t, config.Args{"lr": 0.1, "momentum": 0.9}, exp.Optimizer.Args)
	assert.Nil(t, exp.LossFunc.Args)

	wantBase := []config.ComponentSpec{
		{Name: "to_tensor"},
		{Name: "normalize", Args: config.Args{
			"mean": []any{0.49, 0.48, 0.44},
			"std":  []any{0.24, 0.24, 0.26},
		}},
	}
	if diff := cmp.Diff(wantBase, exp.Dataset.BaseTransforms); diff != "" {
		t.Errorf("base transforms mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, exp.Dataset.AugTransforms, 3)
	assert.Equal(t, 0.8, exp.Dataset.TrainValidSplit)
	assert.True(t, exp.Train.Training(), "train_model defaults to true")
	assert.Equal(t, "accuracy", exp.Train.SaveModelBy)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := config.Parse([]byte(cifarExperiment + "\nepochs: 3\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestParseEmptyDocument(t *testing.T) {
	_, err := config.Parse(nil)
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestValidateAggregates(t *testing.T) {
	exp := &config.Experiment{
		Dataset: config.DatasetSpec{
			TrainValidSplit: 1.5,
			BaseTransforms:  []config.ComponentSpec{{}},
		},
		Train: config.TrainSpec{BatchSize: 0, NumWorker: -1},
	}
	err := exp.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfiguration)

	var fields []string
	for _, e := range multierr.Errors(err) {
		var fe *config.FieldError
		require.True(t, errors.As(e, &fe), "unexpected error %v", e)
		fields = append(fields, fe.Component+"."+fe.Field)
	}
	assert.ElementsMatch(t, []string{
		"model.name", "optimizer.name", "lr_scheduler.name", "loss_func.name", "dataset.name",
		"dataset.train_valid_split", "dataset.base_transforms[0].name",
		"train.batch_size", "train.num_worker",
	}, fields)
}

func TestValidateSplitRatio(t *testing.T) {
	exp, err := config.Parse([]byte(cifarExperiment))
	require.NoError(t, err)

	for _, r := range []float64{1.5, -0.1, math.NaN()} {
		exp.Dataset.TrainValidSplit = r
		err := exp.Validate()
		assert.ErrorIs(t, err, config.ErrInvalidSplitRatio)
		var fe *config.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "train_valid_split", fe.Field)
	}
	for _, r := range []float64{0, 0.8, 1} {
		exp.Dataset.TrainValidSplit = r
		assert.NoError(t, exp.Validate())
	}
}

func TestValidateQuantBits(t *testing.T) {
	exp, err := config.Parse([]byte(cifarExperiment))
	require.NoError(t, err)

	exp.Model.QuantArgs.Bits = ptr.To(32)
	assert.ErrorIs(t, exp.Validate(), config.ErrConfiguration)

	exp.Model.QuantModel = false
	assert.NoError(t, exp.Validate(), "bits are only checked when quantization is requested")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cifarExperiment), 0o600))

	exp, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cifar10", exp.Dataset.Name)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type sgdOptions struct {
	LR       float64 `yaml:"lr"`
	Momentum float64 `yaml:"momentum"`
	Nesterov bool    `yaml:"nesterov"`
}

func TestArgsDecode(t *testing.T) {
	var opts sgdOptions
	require.NoError(t, config.Args{"lr": 1, "momentum": "0.5"}.Decode("sgd", &opts))
	assert.Equal(t, sgdOptions{LR: 1, Momentum: 0.5}, opts)

	var empty sgdOptions
	require.NoError(t, config.Args(nil).Decode("sgd", &empty))
	assert.Zero(t, empty)

	err := config.Args{"lr": 0.1, "betas": []any{0.9}}.Decode("sgd", &opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfiguration)
	var ae *config.ArgsError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "sgd", ae.Component)
	assert.Contains(t, err.Error(), "betas")
}

func TestArgsRequire(t *testing.T) {
	args := config.Args{"lr": 0.1}
	assert.NoError(t, args.Require("sgd", "lr"))

	err := args.Require("adam", "lr", "betas", "eps")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	var fe *config.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "adam", fe.Component)
	assert.Equal(t, "betas", fe.Field)
}

func TestArgsKeysAndClone(t *testing.T) {
	args := config.Args{"b": 1, "a": 2}
	assert.Equal(t, []string{"a", "b"}, args.Keys())

	c := args.Clone()
	c["c"] = 3
	assert.False(t, args.Has("c"))
	assert.Nil(t, config.Args(nil).Clone())
}
