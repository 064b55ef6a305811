package models

import (
	"math/rand/v2"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/layer"
	"github.com/neurlang/trainkit/layer/conv2d"
	"github.com/neurlang/trainkit/layer/full"
	"github.com/neurlang/trainkit/layer/pool2d"
)

type linearOptions struct {
	InFeatures int   `yaml:"in_features"`
	NumClasses int   `yaml:"num_classes"`
	Bias       *bool `yaml:"bias"`
}

// NewLinear is a single fully connected layer.
func NewLinear(args config.Args, rng *rand.Rand) (Model, error) {
	if err := args.Require("linear", "in_features", "num_classes"); err != nil {
		return nil, err
	}
	var opts linearOptions
	if err := args.Decode("linear", &opts); err != nil {
		return nil, err
	}
	if opts.InFeatures <= 0 {
		return nil, config.InvalidField("linear", "in_features", "must be positive, got %d", opts.InFeatures)
	}
	fc, err := full.New(opts.NumClasses, opts.Bias == nil || *opts.Bias)
	if err != nil {
		return nil, config.InvalidField("linear", "num_classes", "%v", err)
	}
	return NewSequential("linear", []int{opts.InFeatures}, rng, fc)
}

type mlpOptions struct {
	InFeatures int   `yaml:"in_features"`
	Hidden     []int `yaml:"hidden"`
	NumClasses int   `yaml:"num_classes"`
}

// NewMLP stacks fully connected layers with ReLU between them. hidden defaults to [128].
func NewMLP(args config.Args, rng *rand.Rand) (Model, error) {
	if err := args.Require("mlp", "in_features", "num_classes"); err != nil {
		return nil, err
	}
	opts := mlpOptions{Hidden: []int{128}}
	if err := args.Decode("mlp", &opts); err != nil {
		return nil, err
	}
	if opts.InFeatures <= 0 {
		return nil, config.InvalidField("mlp", "in_features", "must be positive, got %d", opts.InFeatures)
	}
	var layers []layer.Layer
	for i, h := range opts.Hidden {
		fc, err := full.New(h, true)
		if err != nil {
			return nil, config.InvalidField("mlp", "hidden", "entry %d: %v", i, err)
		}
		layers = append(layers, fc, layer.ReLU{})
	}
	fc, err := full.New(opts.NumClasses, true)
	if err != nil {
		return nil, config.InvalidField("mlp", "num_classes", "%v", err)
	}
	return NewSequential("mlp", []int{opts.InFeatures}, rng, append(layers, fc)...)
}

type convNetOptions struct {
	InChannels int   `yaml:"in_channels"`
	ImageSize  int   `yaml:"image_size"`
	Channels   []int `yaml:"channels"`
	NumClasses int   `yaml:"num_classes"`
}

// NewConvNet is conv3x3-relu-pool2 per entry of channels, then a classifier.
// Defaults fit CIFAR-10: 3x32x32 input, channels [32, 64].
func NewConvNet(args config.Args, rng *rand.Rand) (Model, error) {
	if err := args.Require("convnet", "num_classes"); err != nil {
		return nil, err
	}
	opts := convNetOptions{InChannels: 3, ImageSize: 32, Channels: []int{32, 64}}
	if err := args.Decode("convnet", &opts); err != nil {
		return nil, err
	}
	if opts.InChannels <= 0 || opts.ImageSize <= 0 {
		return nil, config.InvalidField("convnet", "image_size", "input %dx%dx%d is empty", opts.InChannels, opts.ImageSize, opts.ImageSize)
	}
	var layers []layer.Layer
	for i, c := range opts.Channels {
		conv, err := conv2d.New(c, 3, 1, 1)
		if err != nil {
			return nil, config.InvalidField("convnet", "channels", "entry %d: %v", i, err)
		}
		layers = append(layers, conv, layer.ReLU{}, pool2d.MustNew(2))
	}
	fc, err := full.New(opts.NumClasses, true)
	if err != nil {
		return nil, config.InvalidField("convnet", "num_classes", "%v", err)
	}
	layers = append(layers, layer.Flatten{}, fc)
	return NewSequential("convnet", []int{opts.InChannels, opts.ImageSize, opts.ImageSize}, rng, layers...)
}
