package transforms

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/tensor"
)

var errNoRand = errors.New("random transform needs a random source")

type toTensorOptions struct {
	Scale *float64 `yaml:"scale"`
}

// NewToTensor scales raw pixel values (0..255) into [0, 1], or by init_args.scale.
func NewToTensor(args config.Args) (Transform, error) {
	var opts toTensorOptions
	if err := args.Decode("to_tensor", &opts); err != nil {
		return nil, err
	}
	scale := float32(1.0 / 255)
	if opts.Scale != nil {
		scale = float32(*opts.Scale)
	}
	return Func(func(x tensor.Tensor, _ *rand.Rand) (tensor.Tensor, error) {
		out := x.Clone()
		for i := range out.Data {
			out.Data[i] *= scale
		}
		return out, nil
	}), nil
}

type normalizeOptions struct {
	Mean []float64 `yaml:"mean"`
	Std  []float64 `yaml:"std"`
}

// NewNormalize subtracts mean and divides by std per channel.
// A single mean/std value applies to every channel.
func NewNormalize(args config.Args) (Transform, error) {
	if err := args.Require("normalize", "mean", "std"); err != nil {
		return nil, err
	}
	var opts normalizeOptions
	if err := args.Decode("normalize", &opts); err != nil {
		return nil, err
	}
	if len(opts.Mean) == 0 || len(opts.Mean) != len(opts.Std) {
		return nil, config.InvalidField("normalize", "std", "needs one value per mean, got %d and %d", len(opts.Mean), len(opts.Std))
	}
	for i, s := range opts.Std {
		if s == 0 {
			return nil, config.InvalidField("normalize", "std", "entry %d is zero", i)
		}
	}
	return Func(func(x tensor.Tensor, _ *rand.Rand) (tensor.Tensor, error) {
		c, h, w, err := x.CHW()
		if err != nil {
			return tensor.Tensor{}, err
		}
		if len(opts.Mean) != 1 && len(opts.Mean) != c {
			return tensor.Tensor{}, fmt.Errorf("normalize: %d channels, %d means", c, len(opts.Mean))
		}
		out := x.Clone()
		plane := h * w
		for ch := 0; ch < c; ch++ {
			k := min(ch, len(opts.Mean)-1)
			m, s := float32(opts.Mean[k]), float32(opts.Std[k])
			for i := ch * plane; i < (ch+1)*plane; i++ {
				out.Data[i] = (out.Data[i] - m) / s
			}
		}
		return out, nil
	}), nil
}

type flipOptions struct {
	P *float64 `yaml:"p"`
}

// NewRandomHorizontalFlip mirrors the image left to right with probability p (default 0.5).
func NewRandomHorizontalFlip(args config.Args) (Transform, error) {
	var opts flipOptions
	if err := args.Decode("random_horizontal_flip", &opts); err != nil {
		return nil, err
	}
	p := 0.5
	if opts.P != nil {
		p = *opts.P
	}
	if p < 0 || p > 1 {
		return nil, config.InvalidField("random_horizontal_flip", "p", "must be between 0 and 1, got %v", p)
	}
	return Func(func(x tensor.Tensor, rng *rand.Rand) (tensor.Tensor, error) {
		if rng == nil {
			return tensor.Tensor{}, errNoRand
		}
		c, h, w, err := x.CHW()
		if err != nil {
			return tensor.Tensor{}, err
		}
		if rng.Float64() >= p {
			return x, nil
		}
		out := x.Clone()
		for ch := 0; ch < c; ch++ {
			for y := 0; y < h; y++ {
				row := out.Data[(ch*h+y)*w : (ch*h+y+1)*w]
				for i, j := 0, w-1; i < j; i, j = i+1, j-1 {
					row[i], row[j] = row[j], row[i]
				}
			}
		}
		return out, nil
	}), nil
}

type cropOptions struct {
	Size    int `yaml:"size"`
	Padding int `yaml:"padding"`
}

// NewRandomCrop zero-pads the image by padding pixels and cuts a size x size window at a random offset.
func NewRandomCrop(args config.Args) (Transform, error) {
	if err := args.Require("random_crop", "size"); err != nil {
		return nil, err
	}
	var opts cropOptions
	if err := args.Decode("random_crop", &opts); err != nil {
		return nil, err
	}
	if opts.Size <= 0 {
		return nil, config.InvalidField("random_crop", "size", "must be positive, got %d", opts.Size)
	}
	if opts.Padding < 0 {
		return nil, config.InvalidField("random_crop", "padding", "must be >= 0, got %d", opts.Padding)
	}
	return Func(func(x tensor.Tensor, rng *rand.Rand) (tensor.Tensor, error) {
		if rng == nil {
			return tensor.Tensor{}, errNoRand
		}
		c, h, w, err := x.CHW()
		if err != nil {
			return tensor.Tensor{}, err
		}
		ph, pw := h+2*opts.Padding, w+2*opts.Padding
		if opts.Size > ph || opts.Size > pw {
			return tensor.Tensor{}, fmt.Errorf("random_crop: size %d larger than padded input %dx%d", opts.Size, ph, pw)
		}
		top := rng.IntN(ph - opts.Size + 1)
		left := rng.IntN(pw - opts.Size + 1)
		out := tensor.New(c, opts.Size, opts.Size)
		for ch := 0; ch < c; ch++ {
			for y := 0; y < opts.Size; y++ {
				sy := top + y - opts.Padding
				if sy < 0 || sy >= h {
					continue
				}
				for xx := 0; xx < opts.Size; xx++ {
					sx := left + xx - opts.Padding
					if sx < 0 || sx >= w {
						continue
					}
					out.Data[(ch*opts.Size+y)*opts.Size+xx] = x.Data[(ch*h+sy)*w+sx]
				}
			}
		}
		return out, nil
	}), nil
}

// NewFlatten reshapes any sample into a vector.
func NewFlatten(args config.Args) (Transform, error) {
	if err := args.Decode("flatten", &struct{}{}); err != nil {
		return nil, err
	}
	return Func(func(x tensor.Tensor, _ *rand.Rand) (tensor.Tensor, error) {
		return tensor.Tensor{Shape: []int{x.Len()}, Data: append([]float32(nil), x.Data...)}, nil
	}), nil
}
