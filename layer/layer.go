// Package layer defines the layer interface sequential models are built from
package layer

import (
	"fmt"
	"math/rand/v2"

	"github.com/neurlang/trainkit/tensor"
)

// Layer is one stage of a sequential model.
type Layer interface {

	// Lay allocates the layer parameters for input shape in, names them with prefix,
	// and returns them together with the output shape.
	Lay(prefix string, in []int, rng *rand.Rand) (params []*tensor.Parameter, out []int, err error)

	// Kind names the layer in model summaries.
	Kind() string
}

// Flatten reshapes any input into a vector
type Flatten struct{}

func (Flatten) Kind() string { return "flatten" }

func (Flatten) Lay(_ string, in []int, _ *rand.Rand) ([]*tensor.Parameter, []int, error) {
	if len(in) == 0 {
		return nil, nil, fmt.Errorf("Flatten: empty input shape")
	}
	return nil, []int{tensor.Volume(in)}, nil
}

// ReLU is the elementwise rectifier, shape preserving
type ReLU struct{}

func (ReLU) Kind() string { return "relu" }

func (ReLU) Lay(_ string, in []int, _ *rand.Rand) ([]*tensor.Parameter, []int, error) {
	return nil, append([]int(nil), in...), nil
}
