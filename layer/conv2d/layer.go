// Package conv2d implements a 2D convolution layer
package conv2d

import (
	"fmt"
	"math/rand/v2"

	"github.com/neurlang/trainkit/tensor"
)

type Conv2DLayer struct {
	filters, kernel, stride, padding int
}

// MustNew creates a new Conv2D layer with filters, kernel size, stride and padding
func MustNew(filters, kernel, stride, padding int) *Conv2DLayer {
	o, err := New(filters, kernel, stride, padding)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new Conv2D layer with filters, kernel size, stride and padding
func New(filters, kernel, stride, padding int) (o *Conv2DLayer, err error) {
	if filters <= 0 {
		return nil, fmt.Errorf("New Conv2D: Filters %d is not positive", filters)
	}
	if kernel <= 0 {
		return nil, fmt.Errorf("New Conv2D: Kernel %d is not positive", kernel)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("New Conv2D: Stride %d is not positive", stride)
	}
	if padding < 0 {
		return nil, fmt.Errorf("New Conv2D: Padding %d is negative", padding)
	}
	o = new(Conv2DLayer)
	o.filters = filters
	o.kernel = kernel
	o.stride = stride
	o.padding = padding
	return
}

func (i *Conv2DLayer) Kind() string {
	return fmt.Sprintf("conv2d(%d,%dx%d)", i.filters, i.kernel, i.kernel)
}

// Lay allocates [filters, channels, kernel, kernel] weights and a bias per filter
func (i *Conv2DLayer) Lay(prefix string, in []int, rng *rand.Rand) ([]*tensor.Parameter, []int, error) {
	if len(in) != 3 {
		return nil, nil, fmt.Errorf("Conv2D: expects a CHW input, got shape %v", in)
	}
	c, h, w := in[0], in[1], in[2]
	ph, pw := h+2*i.padding, w+2*i.padding
	if ph < i.kernel {
		return nil, nil, fmt.Errorf("Conv2D: Height %d is lower than Kernel %d", ph, i.kernel)
	}
	if pw < i.kernel {
		return nil, nil, fmt.Errorf("Conv2D: Width %d is lower than Kernel %d", pw, i.kernel)
	}
	fanIn := c * i.kernel * i.kernel
	params := []*tensor.Parameter{
		tensor.NewParameter(prefix+".weight", fanIn, rng, i.filters, c, i.kernel, i.kernel),
		tensor.NewParameter(prefix+".bias", fanIn, rng, i.filters),
	}
	out := []int{i.filters, (ph-i.kernel)/i.stride + 1, (pw-i.kernel)/i.stride + 1}
	return params, out, nil
}
