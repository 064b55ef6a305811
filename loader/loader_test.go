package loader

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/tensor"
	"github.com/neurlang/trainkit/transforms"
)

// jitter adds a random offset so transform randomness shows up in the batches.
var jitter = transforms.Func(func(x tensor.Tensor, rng *rand.Rand) (tensor.Tensor, error) {
	y := x.Clone()
	y.Data[0] += float32(rng.Float64())
	return y, nil
})

// imbalanced has 90 samples of class 0 and 10 of class 1.
func imbalanced(t *testing.T, tf transforms.Transform) datasets.Dataset {
	t.Helper()
	inputs := make([]tensor.Tensor, 100)
	labels := make([]int, 100)
	for i := range inputs {
		inputs[i] = tensor.Tensor{Shape: []int{1}, Data: []float32{float32(i)}}
		if i >= 90 {
			labels[i] = 1
		}
	}
	ds, err := datasets.NewMemory(inputs, labels, 2, tf)
	require.NoError(t, err)
	return ds
}

func collect(t *testing.T, l *Loader, epoch int) []Batch {
	t.Helper()
	var out []Batch
	require.NoError(t, l.Iterate(context.Background(), epoch, func(b Batch) error {
		out = append(out, b)
		return nil
	}))
	return out
}

func TestLen(t *testing.T) {
	ds := imbalanced(t, nil)
	l, err := New(ds, Config{BatchSize: 32})
	require.NoError(t, err)
	assert.Equal(t, 4, l.Len())

	l, err = New(ds, Config{BatchSize: 32, DropLast: true})
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())
	assert.Len(t, collect(t, l, 0), 3)
}

func TestNewErrors(t *testing.T) {
	empty, err := datasets.NewMemory(nil, nil, 2, nil)
	require.NoError(t, err)
	_, err = New(empty, Config{BatchSize: 4})
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = New(imbalanced(t, nil), Config{BatchSize: 101, DropLast: true})
	assert.ErrorIs(t, err, ErrNoBatches)

	_, err = New(imbalanced(t, nil), Config{BatchSize: 0})
	assert.ErrorIs(t, err, config.ErrConfiguration)
	_, err = New(imbalanced(t, nil), Config{BatchSize: 1, NumWorkers: -1})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestSequentialOrder(t *testing.T) {
	l, err := New(imbalanced(t, nil), Config{BatchSize: 40})
	require.NoError(t, err)
	batches := collect(t, l, 3)
	require.Len(t, batches, 3)
	assert.Len(t, batches[2].Inputs, 20)
	for b, batch := range batches {
		for i, idx := range batch.Indices {
			assert.Equal(t, b*40+i, idx)
			assert.Equal(t, float32(idx), batch.Inputs[i].Data[0])
		}
	}
}

func TestShuffleIsPerEpochPermutation(t *testing.T) {
	s := NewRandomSampler(50, 9)
	a, b := s.Indices(0), s.Indices(1)
	assert.ElementsMatch(t, NewSequentialSampler(50).Indices(0), a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, NewRandomSampler(50, 9).Indices(0))
}

func TestWeightedSamplerBalancesClasses(t *testing.T) {
	ds := imbalanced(t, nil)
	s, err := NewWeightedSampler(ds, 1)
	require.NoError(t, err)

	var minority int
	const epochs = 50
	for e := 0; e < epochs; e++ {
		idx := s.Indices(e)
		require.Len(t, idx, 100)
		for _, i := range idx {
			require.True(t, i >= 0 && i < 100)
			minority += ds.Label(i)
		}
	}
	// about half of the draws come from the 10% minority class
	assert.InDelta(t, 0.5, float64(minority)/(100*epochs), 0.05)
}

func TestIterateIsIndependentOfWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	ds := imbalanced(t, jitter)
	var runs [][]Batch
	for _, workers := range []int{0, 1, 3, 16} {
		l, err := New(ds, Config{BatchSize: 7, NumWorkers: workers, Policy: Shuffle, Seed: 42})
		require.NoError(t, err)
		runs = append(runs, collect(t, l, 2))
	}
	for i := 1; i < len(runs); i++ {
		if diff := cmp.Diff(runs[0], runs[i]); diff != "" {
			t.Fatalf("run %d differs (-want +got):\n%s", i, diff)
		}
	}

	l, err := New(ds, Config{BatchSize: 7, NumWorkers: 3, Policy: Shuffle, Seed: 42})
	require.NoError(t, err)
	assert.NotEqual(t, runs[0], collect(t, l, 3), "a new epoch draws new randomness")
}

func TestIterateStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, err := New(imbalanced(t, nil), Config{BatchSize: 10, NumWorkers: 4})
	require.NoError(t, err)

	stop := errors.New("stop")
	var seen int
	err = l.Iterate(context.Background(), 0, func(Batch) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = l.Iterate(ctx, 0, func(Batch) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildAllPolicies(t *testing.T) {
	ds := imbalanced(t, nil)
	for _, tc := range []struct {
		trainWeighted, testWeighted bool
		train, test                 Policy
	}{
		{false, false, Shuffle, Sequential},
		{true, false, Weighted, Sequential},
		{false, true, Shuffle, Weighted},
		{true, true, Weighted, Weighted},
	} {
		ls, err := BuildAll(ds, ds, ds, Options{BatchSize: 8, TrainWeighted: tc.trainWeighted, TestWeighted: tc.testWeighted})
		require.NoError(t, err)
		assert.Equal(t, tc.train, ls.Train.Config().Policy)
		assert.Equal(t, Sequential, ls.Validation.Config().Policy, "validation is always sequential")
		assert.Equal(t, tc.test, ls.Test.Config().Policy)
		assert.NotEqual(t, ls.Train.Config().Seed, ls.Test.Config().Seed)
	}
}

func TestBuildAllWithoutValidation(t *testing.T) {
	ds := imbalanced(t, nil)
	ls, err := BuildAll(ds, nil, ds, Options{BatchSize: 8, NumWorkers: 2, DropLast: true})
	require.NoError(t, err)
	assert.Nil(t, ls.Validation)
	assert.Equal(t, 2, ls.Test.Config().NumWorkers)
	assert.True(t, ls.Test.Config().DropLast)

	empty, err := datasets.NewMemory(nil, nil, 2, nil)
	require.NoError(t, err)
	_, err = BuildAll(empty, nil, ds, Options{BatchSize: 8})
	assert.ErrorIs(t, err, ErrEmptyDataset)
	assert.ErrorContains(t, err, "train loader")
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "weighted", Weighted.String())
	assert.Equal(t, "Policy(9)", Policy(9).String())
}
