package learning

import (
	"math"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/tensor"
)

// Adam keeps per-parameter first and second moment estimates.
type Adam struct {
	base
	h    AdamHyperParameters
	t    int
	m, v [][]float32
}

// NewAdam defaults every hyperparameter.
func NewAdam(params []*tensor.Parameter, args config.Args) (Optimizer, error) {
	h, err := DecodeAdam("adam", args)
	if err != nil {
		return nil, err
	}
	return NewAdamWith("adam", params, h), nil
}

// NewAdamWith builds Adam from already decoded hyperparameters.
func NewAdamWith(name string, params []*tensor.Parameter, h AdamHyperParameters) *Adam {
	o := &Adam{base: base{name: name, params: params, lr: h.LR}, h: h}
	o.m = make([][]float32, len(params))
	o.v = make([][]float32, len(params))
	for i, p := range params {
		o.m[i] = make([]float32, len(p.Data))
		o.v[i] = make([]float32, len(p.Data))
	}
	return o
}

func (o *Adam) Step() error {
	o.t++
	b1, b2 := o.h.Betas[0], o.h.Betas[1]
	c1 := 1 - math.Pow(b1, float64(o.t))
	c2 := 1 - math.Pow(b2, float64(o.t))
	wd := float32(o.h.WeightDecay)
	for i, p := range o.params {
		if err := checkGrad(p); err != nil {
			return err
		}
		if p.Grad == nil {
			continue
		}
		m, v := o.m[i], o.v[i]
		for j := range p.Data {
			g := float64(p.Grad[j] + wd*p.Data[j])
			m[j] = float32(b1*float64(m[j]) + (1-b1)*g)
			v[j] = float32(b2*float64(v[j]) + (1-b2)*g*g)
			mhat := float64(m[j]) / c1
			vhat := float64(v[j]) / c2
			p.Data[j] -= float32(o.lr * mhat / (math.Sqrt(vhat) + o.h.Eps))
		}
	}
	return nil
}
