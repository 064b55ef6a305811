// Package full implements a fully connected layer
package full

import (
	"fmt"
	"math/rand/v2"

	"github.com/neurlang/trainkit/tensor"
)

type FullLayer struct {
	size int
	bias bool
}

// MustNew creates a new full layer with size outputs
func MustNew(size int, bias bool) *FullLayer {
	o, err := New(size, bias)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new full layer with size outputs
func New(size int, bias bool) (o *FullLayer, err error) {
	if size <= 0 {
		return nil, fmt.Errorf("New Full: Size %d is not positive", size)
	}
	o = new(FullLayer)
	o.size = size
	o.bias = bias
	return
}

func (i *FullLayer) Kind() string { return fmt.Sprintf("full(%d)", i.size) }

// Lay allocates the weight matrix [size, in] and the optional bias
func (i *FullLayer) Lay(prefix string, in []int, rng *rand.Rand) ([]*tensor.Parameter, []int, error) {
	if len(in) != 1 {
		return nil, nil, fmt.Errorf("Full: expects a vector input, got shape %v", in)
	}
	params := []*tensor.Parameter{
		tensor.NewParameter(prefix+".weight", in[0], rng, i.size, in[0]),
	}
	if i.bias {
		params = append(params, tensor.NewParameter(prefix+".bias", in[0], rng, i.size))
	}
	return params, []int{i.size}, nil
}
