package learning

import "github.com/neurlang/trainkit/config"

// SGDHyperParameters are the init_args of the sgd optimizer.
type SGDHyperParameters struct {
	LR          float64 `yaml:"lr"`
	Momentum    float64 `yaml:"momentum"`
	WeightDecay float64 `yaml:"weight_decay"`
	Nesterov    bool    `yaml:"nesterov"`
	Dampening   float64 `yaml:"dampening"`
}

// AdamHyperParameters are the init_args of the adam optimizer.
type AdamHyperParameters struct {
	LR          float64    `yaml:"lr"`
	Betas       [2]float64 `yaml:"betas"`
	Eps         float64    `yaml:"eps"`
	WeightDecay float64    `yaml:"weight_decay"`
}

// DecodeSGD reads SGD hyperparameters from args; lr is required.
// Extra lists keys the caller consumes itself and which are removed before decoding.
func DecodeSGD(component string, args config.Args, extra ...string) (h SGDHyperParameters, err error) {
	if err = args.Require(component, "lr"); err != nil {
		return
	}
	if err = strip(args, extra).Decode(component, &h); err != nil {
		return
	}
	switch {
	case h.LR <= 0:
		err = config.InvalidField(component, "lr", "must be positive, got %g", h.LR)
	case h.Momentum < 0:
		err = config.InvalidField(component, "momentum", "must not be negative, got %g", h.Momentum)
	case h.WeightDecay < 0:
		err = config.InvalidField(component, "weight_decay", "must not be negative, got %g", h.WeightDecay)
	case h.Nesterov && (h.Momentum == 0 || h.Dampening != 0):
		err = config.InvalidField(component, "nesterov", "requires momentum and zero dampening")
	}
	return
}

// DecodeAdam reads Adam hyperparameters from args with the usual defaults
// (lr 1e-3, betas 0.9/0.999, eps 1e-8).
func DecodeAdam(component string, args config.Args, extra ...string) (h AdamHyperParameters, err error) {
	h = AdamHyperParameters{LR: 1e-3, Betas: [2]float64{0.9, 0.999}, Eps: 1e-8}
	if err = strip(args, extra).Decode(component, &h); err != nil {
		return
	}
	switch {
	case h.LR <= 0:
		err = config.InvalidField(component, "lr", "must be positive, got %g", h.LR)
	case h.Betas[0] < 0 || h.Betas[0] >= 1 || h.Betas[1] < 0 || h.Betas[1] >= 1:
		err = config.InvalidField(component, "betas", "must be in [0, 1), got %v", h.Betas)
	case h.Eps <= 0:
		err = config.InvalidField(component, "eps", "must be positive, got %g", h.Eps)
	}
	return
}

func strip(args config.Args, keys []string) config.Args {
	if len(keys) == 0 {
		return args
	}
	out := args.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
