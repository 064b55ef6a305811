package learning

import (
	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/tensor"
)

// SGD is stochastic gradient descent with optional momentum, dampening, Nesterov and weight decay.
type SGD struct {
	base
	h   SGDHyperParameters
	buf [][]float32
}

// NewSGD requires lr.
func NewSGD(params []*tensor.Parameter, args config.Args) (Optimizer, error) {
	h, err := DecodeSGD("sgd", args)
	if err != nil {
		return nil, err
	}
	return NewSGDWith("sgd", params, h), nil
}

// NewSGDWith builds SGD from already decoded hyperparameters.
func NewSGDWith(name string, params []*tensor.Parameter, h SGDHyperParameters) *SGD {
	return &SGD{base: base{name: name, params: params, lr: h.LR}, h: h, buf: make([][]float32, len(params))}
}

// Step applies one update. Parameters without a gradient are left alone.
func (o *SGD) Step() error {
	var (
		lr   = float32(o.lr)
		wd   = float32(o.h.WeightDecay)
		mom  = float32(o.h.Momentum)
		damp = 1 - float32(o.h.Dampening)
	)
	for i, p := range o.params {
		if err := checkGrad(p); err != nil {
			return err
		}
		if p.Grad == nil {
			continue
		}
		first := false
		if mom != 0 && o.buf[i] == nil {
			o.buf[i] = make([]float32, len(p.Data))
			first = true
		}
		buf := o.buf[i]
		for j := range p.Data {
			g := p.Grad[j] + wd*p.Data[j]
			if mom != 0 {
				// the first step seeds the momentum buffer with the raw gradient
				if first {
					buf[j] = g
				} else {
					buf[j] = mom*buf[j] + damp*g
				}
				if o.h.Nesterov {
					g += mom * buf[j]
				} else {
					g = buf[j]
				}
			}
			p.Data[j] -= lr * g
		}
	}
	return nil
}
