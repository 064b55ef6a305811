package quantization

import (
	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/learning"
	"github.com/neurlang/trainkit/tensor"
)

type gradOptions struct {
	Bits int `yaml:"bits"`
}

func decodeBits(component string, args config.Args) (int, error) {
	o := gradOptions{Bits: 8}
	sub := config.Args{}
	if args.Has("bits") {
		sub["bits"] = args["bits"]
	}
	if err := sub.Decode(component, &o); err != nil {
		return 0, err
	}
	if o.Bits < 1 || o.Bits > MaxBits {
		return 0, config.InvalidField(component, "bits", "must be between 1 and %d, got %d", MaxBits, o.Bits)
	}
	return o.Bits, nil
}

// gradQuantizer snaps every gradient before delegating the update.
type gradQuantizer struct {
	learning.Optimizer
	bits int
}

func (o *gradQuantizer) Step() error {
	for _, p := range o.Parameters() {
		if p.Grad != nil {
			Snap(p.Grad, o.bits)
		}
	}
	return o.Optimizer.Step()
}

// Bits is the gradient width.
func (o *gradQuantizer) Bits() int { return o.bits }

// NewQSGD is SGD on gradients quantized to bits (default 8). It accepts every sgd argument.
func NewQSGD(params []*tensor.Parameter, args config.Args) (learning.Optimizer, error) {
	bits, err := decodeBits("qsgd", args)
	if err != nil {
		return nil, err
	}
	h, err := learning.DecodeSGD("qsgd", args, "bits")
	if err != nil {
		return nil, err
	}
	return &gradQuantizer{Optimizer: learning.NewSGDWith("qsgd", params, h), bits: bits}, nil
}

// NewQAdam is Adam on gradients quantized to bits (default 8). It accepts every adam argument.
func NewQAdam(params []*tensor.Parameter, args config.Args) (learning.Optimizer, error) {
	bits, err := decodeBits("qadam", args)
	if err != nil {
		return nil, err
	}
	h, err := learning.DecodeAdam("qadam", args, "bits")
	if err != nil {
		return nil, err
	}
	return &gradQuantizer{Optimizer: learning.NewAdamWith("qadam", params, h), bits: bits}, nil
}
