package transforms_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/registry"
	"github.com/neurlang/trainkit/tensor"
	"github.com/neurlang/trainkit/transforms"
)

func image(c, h, w int) tensor.Tensor {
	t := tensor.New(c, h, w)
	for i := range t.Data {
		t.Data[i] = float32(i)
	}
	return t
}

func TestBuildEmptyIsIdentity(t *testing.T) {
	reg := transforms.NewRegistry()
	for _, specs := range [][]config.ComponentSpec{nil, {}} {
		tf, err := transforms.Build(reg, specs)
		require.NoError(t, err)

		for _, x := range []tensor.Tensor{image(3, 4, 4), tensor.New(7), {}} {
			y, err := tf.Apply(x, nil)
			require.NoError(t, err)
			if diff := cmp.Diff(x, y); diff != "" {
				t.Errorf("identity changed the sample (-in +out):\n%s", diff)
			}
		}
	}
}

func TestBuildAppliesInOrder(t *testing.T) {
	reg := transforms.NewRegistry()
	reg.MustRegister("add", func(args config.Args) (transforms.Transform, error) {
		var opts struct {
			V float32 `yaml:"v"`
		}
		if err := args.Decode("add", &opts); err != nil {
			return nil, err
		}
		return transforms.Func(func(x tensor.Tensor, _ *rand.Rand) (tensor.Tensor, error) {
			out := x.Clone()
			for i := range out.Data {
				out.Data[i] += opts.V
			}
			return out, nil
		}), nil
	})

	tf, err := transforms.Build(reg, []config.ComponentSpec{
		{Name: "add", Args: config.Args{"v": 1}},
		{Name: "to_tensor", Args: config.Args{"scale": 10}},
	})
	require.NoError(t, err)

	x := tensor.Tensor{Shape: []int{2}, Data: []float32{0, 1}}
	y, err := tf.Apply(x, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{10, 20}, y.Data, "(x+1)*10, not x*10+1")
	assert.Equal(t, []float32{0, 1}, x.Data, "input must not be mutated")
}

func TestBuildUnknownName(t *testing.T) {
	_, err := transforms.Build(transforms.NewRegistry(), []config.ComponentSpec{
		{Name: "to_tensor"},
		{Name: "color_jitter"},
	})
	require.ErrorIs(t, err, registry.ErrUnknownComponent)
	var ue *registry.UnknownComponentError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "transform", ue.Registry)
	assert.Equal(t, "color_jitter", ue.Name)
}

func TestBuildBadArgs(t *testing.T) {
	_, err := transforms.Build(transforms.NewRegistry(), []config.ComponentSpec{
		{Name: "normalize", Args: config.Args{"mean": []any{0.5}}},
	})
	var fe *config.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "std", fe.Field)

	_, err = transforms.Build(transforms.NewRegistry(), []config.ComponentSpec{
		{Name: "flatten", Args: config.Args{"dims": 2}},
	})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestNormalize(t *testing.T) {
	tf, err := transforms.NewNormalize(config.Args{"mean": []any{1, 2}, "std": []any{2, 4}})
	require.NoError(t, err)

	x := tensor.Tensor{Shape: []int{2, 1, 2}, Data: []float32{3, 5, 6, 10}}
	y, err := tf.Apply(x, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 1, 2}, y.Data)

	_, err = tf.Apply(image(3, 1, 1), nil)
	assert.Error(t, err, "channel count mismatch")

	_, err = transforms.NewNormalize(config.Args{"mean": []any{0}, "std": []any{0}})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestRandomHorizontalFlip(t *testing.T) {
	always, err := transforms.NewRandomHorizontalFlip(config.Args{"p": 1})
	require.NoError(t, err)
	never, err := transforms.NewRandomHorizontalFlip(config.Args{"p": 0})
	require.NoError(t, err)

	x := tensor.Tensor{Shape: []int{1, 2, 3}, Data: []float32{1, 2, 3, 4, 5, 6}}
	rng := rand.New(rand.NewPCG(1, 2))

	y, err := always.Apply(x, rng)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 2, 1, 6, 5, 4}, y.Data)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.Data)

	y, err = never.Apply(x, rng)
	require.NoError(t, err)
	assert.Equal(t, x.Data, y.Data)

	_, err = always.Apply(x, nil)
	assert.Error(t, err)

	_, err = transforms.NewRandomHorizontalFlip(config.Args{"p": 2})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestRandomCrop(t *testing.T) {
	tf, err := transforms.NewRandomCrop(config.Args{"size": 4, "padding": 2})
	require.NoError(t, err)

	x := image(3, 4, 4)
	for seed := uint64(0); seed < 20; seed++ {
		y, err := tf.Apply(x, rand.New(rand.NewPCG(seed, 0)))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 4, 4}, y.Shape)
	}

	// zero padding and full size crop is the identity
	id, err := transforms.NewRandomCrop(config.Args{"size": 4})
	require.NoError(t, err)
	y, err := id.Apply(x, rand.New(rand.NewPCG(0, 0)))
	require.NoError(t, err)
	assert.Equal(t, x.Data, y.Data)

	big, err := transforms.NewRandomCrop(config.Args{"size": 9})
	require.NoError(t, err)
	_, err = big.Apply(x, rand.New(rand.NewPCG(0, 0)))
	assert.Error(t, err)

	_, err = transforms.NewRandomCrop(nil)
	var fe *config.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "size", fe.Field)
}

func TestFlattenAndToTensor(t *testing.T) {
	flat, err := transforms.NewFlatten(nil)
	require.NoError(t, err)
	y, err := flat.Apply(image(2, 2, 2), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{8}, y.Shape)

	tt, err := transforms.NewToTensor(nil)
	require.NoError(t, err)
	y, err = tt.Apply(tensor.Tensor{Shape: []int{2}, Data: []float32{0, 255}}, nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 1}, y.Data, 1e-6)
}
