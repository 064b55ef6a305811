package datasets

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/registry"
	"github.com/neurlang/trainkit/tensor"
	"github.com/neurlang/trainkit/transforms"
)

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed)) }

// counting returns a dataset of n scalar samples whose value is their index.
func counting(t *testing.T, n, classes int, tf transforms.Transform) *Memory {
	t.Helper()
	inputs := make([]tensor.Tensor, n)
	labels := make([]int, n)
	for i := range inputs {
		inputs[i] = tensor.Tensor{Shape: []int{1}, Data: []float32{float32(i)}}
		labels[i] = i % classes
	}
	m, err := NewMemory(inputs, labels, classes, tf)
	require.NoError(t, err)
	return m
}

func TestRandomSplitPartitions(t *testing.T) {
	for _, tc := range []struct {
		n     int
		ratio float64
	}{
		{100, 0.8}, {7, 0.5}, {1, 0.3}, {50, 0}, {50, 1}, {0, 0.5}, {1000, 0.333},
	} {
		ds := counting(t, tc.n, 2, nil)
		train, val, err := RandomSplit(ds, tc.ratio, newRand(1))
		require.NoError(t, err)

		wantTrain, wantVal, err := SplitSizes(tc.n, tc.ratio)
		require.NoError(t, err)
		assert.Equal(t, wantTrain, train.Len())
		assert.Equal(t, wantVal, val.Len())
		assert.Equal(t, tc.n, train.Len()+val.Len())

		all := append(train.Indices(), val.Indices()...)
		slices.Sort(all)
		for i, v := range all {
			require.Equal(t, i, v, "n=%d ratio=%g: indices do not cover the dataset exactly once", tc.n, tc.ratio)
		}
	}
}

func TestSplitSizesFloor(t *testing.T) {
	train, val, err := SplitSizes(50000, 0.8)
	require.NoError(t, err)
	assert.Equal(t, 40000, train)
	assert.Equal(t, 10000, val)

	train, val, err = SplitSizes(10, 0.55)
	require.NoError(t, err)
	assert.Equal(t, 5, train)
	assert.Equal(t, 5, val)
}

func TestInvalidSplitRatio(t *testing.T) {
	for _, r := range []float64{-0.1, 1.5} {
		_, _, err := RandomSplit(counting(t, 10, 2, nil), r, newRand(1))
		assert.ErrorIs(t, err, ErrInvalidSplitRatio)
		assert.ErrorIs(t, err, config.ErrConfiguration)
		var re *InvalidSplitRatioError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, r, re.Ratio)
	}
}

func TestSubsetReadsParent(t *testing.T) {
	double := transforms.Func(func(x tensor.Tensor, _ *rand.Rand) (tensor.Tensor, error) {
		y := x.Clone()
		y.Data[0] *= 2
		return y, nil
	})
	parent := counting(t, 10, 3, double)
	require.NoError(t, parent.SetClassWeight([]float32{1, 2, 3}))

	s := NewSubset(parent, []int{7, 2})
	got, err := Get(s, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(14), got.Input.Data[0])
	assert.Equal(t, 1, got.Label)
	assert.Equal(t, []float32{1, 2, 3}, s.ClassWeight())

	s.Rebind(transforms.Identity)
	got, err = Get(s, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(7), got.Input.Data[0])

	got, err = Get(parent, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(14), got.Input.Data[0], "rebinding a view must not touch the parent")

	_, err = Get(s, 2, nil)
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	ds := counting(t, 100, 2, nil)
	a, _, err := RandomSplit(ds, 0.5, newRand(1))
	require.NoError(t, err)
	b, _, err := RandomSplit(ds, 0.5, newRand(1))
	require.NoError(t, err)
	c, _, err := RandomSplit(ds, 0.5, newRand(2))
	require.NoError(t, err)

	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())
	assert.Len(t, a.Digest(), 64)
	assert.Equal(t, Digest(NewSubset(ds, []int{0, 1, 2})), Digest(counting(t, 3, 2, nil)))
}

func TestTallyWeights(t *testing.T) {
	tally := NewTally(3)
	for _, l := range []int{0, 0, 0, 1, 7} {
		tally.Add(l)
	}
	assert.Equal(t, 4, tally.Len())
	assert.Equal(t, []int{3, 1, 0}, tally.Counts())
	assert.InDeltaSlice(t, []float32{4.0 / 9, 4.0 / 3, 0}, tally.Weights(), 1e-6)
}

func TestSubsetClassWeightDescribesParent(t *testing.T) {
	parent := counting(t, 10, 2, nil)
	full := TallyLabels(parent).Weights()
	require.NoError(t, parent.SetClassWeight(full))

	// only class 0 samples selected, the weights still describe all ten
	s := NewSubset(parent, []int{0, 2, 4, 6})
	assert.Equal(t, full, s.ClassWeight())
	assert.NotEqual(t, TallyLabels(s).Weights(), s.ClassWeight())
}

func TestResolveClassWeight(t *testing.T) {
	labels := []int{0, 0, 0, 1}
	w, err := ResolveClassWeight("x", nil, labels, 2)
	require.NoError(t, err)
	assert.Nil(t, w)

	w, err = ResolveClassWeight("x", "balanced", labels, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{2.0 / 3, 2}, w, 1e-6)

	w, err = ResolveClassWeight("x", []any{1, 0.5}, labels, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0.5}, w)

	_, err = ResolveClassWeight("x", []any{1}, labels, 2)
	assert.ErrorIs(t, err, config.ErrConfiguration)
	_, err = ResolveClassWeight("x", "inverse", labels, 2)
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestSynthetic(t *testing.T) {
	train, err := NewSynthetic(Options{Train: true, Args: config.Args{"num_classes": 4, "shape": []int{2}, "class_weight": "balanced"}})
	require.NoError(t, err)
	test, err := NewSynthetic(Options{Args: config.Args{"num_classes": 4, "shape": []int{2}}})
	require.NoError(t, err)

	assert.Equal(t, 1000, train.Len())
	assert.Equal(t, 200, test.Len())
	assert.Equal(t, []float32{1, 1, 1, 1}, train.ClassWeight())
	assert.Nil(t, test.ClassWeight())

	again, err := NewSynthetic(Options{Train: true, Args: config.Args{"num_classes": 4, "shape": []int{2}}})
	require.NoError(t, err)
	x, _ := train.Raw(5)
	y, _ := again.Raw(5)
	assert.Equal(t, x, y, "generation is deterministic")

	_, err = NewSynthetic(Options{Args: config.Args{"colour": "red"}})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func splitSpec(useValidation bool) config.DatasetSpec {
	return config.DatasetSpec{
		Name:            "synthetic",
		Aug:             true,
		BaseTransforms:  []config.ComponentSpec{{Name: "flatten"}},
		AugTransforms:   []config.ComponentSpec{{Name: "random_horizontal_flip", Args: config.Args{"p": 1.0}}},
		TrainSet:        config.Args{"num_samples": 50},
		TrainValidSplit: 0.8,
		UseValidation:   useValidation,
	}
}

func TestBuildSplitsValidationEnabled(t *testing.T) {
	s, err := BuildSplits(NewRegistry(), transforms.NewRegistry(), splitSpec(true), newRand(3))
	require.NoError(t, err)

	assert.Equal(t, 40, s.Train.Len())
	assert.Equal(t, 10, s.Validation.Len())
	assert.Equal(t, 40, s.TrainSize)
	assert.Equal(t, 10, s.ValidationSize)
	assert.Equal(t, 200, s.Test.Len())

	// validation sees the base pipeline, train keeps augmentation
	v, err := Get(s.Validation, 0, newRand(0))
	require.NoError(t, err)
	assert.Equal(t, []int{3 * 8 * 8}, v.Input.Shape)
	tr, err := Get(s.Train, 0, newRand(0))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 8, 8}, tr.Input.Shape)
	te, err := Get(s.Test, 0, newRand(0))
	require.NoError(t, err)
	assert.Equal(t, []int{3 * 8 * 8}, te.Input.Shape)
}

func TestBuildSplitsValidationDisabled(t *testing.T) {
	s, err := BuildSplits(NewRegistry(), transforms.NewRegistry(), splitSpec(false), newRand(3))
	require.NoError(t, err)
	assert.Equal(t, 50, s.Train.Len(), "disabled validation trains on all of total-train")
	assert.Nil(t, s.Validation)
	assert.Equal(t, 0, s.ValidationSize)
}

func TestBuildSplitsErrors(t *testing.T) {
	spec := splitSpec(true)
	spec.Name = "imagenet"
	_, err := BuildSplits(NewRegistry(), transforms.NewRegistry(), spec, newRand(1))
	assert.ErrorIs(t, err, registry.ErrUnknownComponent)

	spec = splitSpec(true)
	spec.AugTransforms = []config.ComponentSpec{{Name: "mixup"}}
	_, err = BuildSplits(NewRegistry(), transforms.NewRegistry(), spec, newRand(1))
	assert.ErrorIs(t, err, registry.ErrUnknownComponent)

	spec = splitSpec(true)
	spec.TrainValidSplit = 1.2
	_, err = BuildSplits(NewRegistry(), transforms.NewRegistry(), spec, newRand(1))
	assert.ErrorIs(t, err, ErrInvalidSplitRatio)
}
