package loss

import "github.com/neurlang/trainkit/config"

// MSE is the squared distance between outputs and one-hot targets.
type MSE struct {
	reduction reduction
}

func NewMSE(args config.Args) (Loss, error) {
	var o struct {
		Reduction reduction `yaml:"reduction"`
	}
	o.Reduction = mean
	if err := args.Decode("mse", &o); err != nil {
		return nil, err
	}
	if err := o.Reduction.check("mse"); err != nil {
		return nil, err
	}
	return &MSE{reduction: o.Reduction}, nil
}

func (*MSE) Name() string      { return "mse" }
func (*MSE) Weight() []float32 { return nil }

func (l *MSE) Forward(outputs [][]float32, targets []int) (float64, error) {
	if err := checkBatch(outputs, targets); err != nil {
		return 0, err
	}
	var total float64
	var n int
	for i, o := range outputs {
		for c, v := range o {
			d := float64(v)
			if c == targets[i] {
				d--
			}
			total += d * d
		}
		n += len(o)
	}
	if l.reduction == sum {
		return total, nil
	}
	return total / float64(n), nil
}
