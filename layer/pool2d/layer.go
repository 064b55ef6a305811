// Package pool2d implements a parameterless 2D max pooling layer
package pool2d

import (
	"fmt"
	"math/rand/v2"

	"github.com/neurlang/trainkit/tensor"
)

type Pool2DLayer struct {
	size int
}

// MustNew creates a new Pool2D layer with a square window that is also the stride
func MustNew(size int) *Pool2DLayer {
	o, err := New(size)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new Pool2D layer with a square window that is also the stride
func New(size int) (o *Pool2DLayer, err error) {
	if size <= 0 {
		return nil, fmt.Errorf("New Pool2D: Size %d is not positive", size)
	}
	return &Pool2DLayer{size: size}, nil
}

func (i *Pool2DLayer) Kind() string { return fmt.Sprintf("pool2d(%d)", i.size) }

func (i *Pool2DLayer) Lay(_ string, in []int, _ *rand.Rand) ([]*tensor.Parameter, []int, error) {
	if len(in) != 3 {
		return nil, nil, fmt.Errorf("Pool2D: expects a CHW input, got shape %v", in)
	}
	if in[1] < i.size || in[2] < i.size {
		return nil, nil, fmt.Errorf("Pool2D: input %dx%d is smaller than window %d", in[1], in[2], i.size)
	}
	return nil, []int{in[0], in[1] / i.size, in[2] / i.size}, nil
}
