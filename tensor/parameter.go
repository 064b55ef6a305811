package tensor

import (
	"math"
	"math/rand/v2"
)

// Parameter is a named trainable tensor with its gradient buffer.
type Parameter struct {
	Name string
	Tensor
	Grad []float32
}

// NewParameter allocates a parameter and fills it uniformly in [-1/sqrt(fanIn), 1/sqrt(fanIn)].
// A nil rng or non-positive fanIn leaves it zeroed.
func NewParameter(name string, fanIn int, rng *rand.Rand, shape ...int) *Parameter {
	p := &Parameter{Name: name, Tensor: New(shape...)}
	p.Grad = make([]float32, len(p.Data))
	if rng == nil || fanIn <= 0 {
		return p
	}
	bound := 1 / math.Sqrt(float64(fanIn))
	for i := range p.Data {
		p.Data[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	return p
}

// ZeroGrad clears the gradient buffer.
func (p *Parameter) ZeroGrad() {
	clear(p.Grad)
}

// Count sums element counts across parameters.
func Count(params []*Parameter) (n int) {
	for _, p := range params {
		n += p.Len()
	}
	return
}
