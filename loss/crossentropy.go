package loss

import (
	"fmt"
	"math"

	"github.com/neurlang/trainkit/config"
)

type crossEntropyOptions struct {
	Reduction      reduction `yaml:"reduction"`
	LabelSmoothing float64   `yaml:"label_smoothing"`
}

// CrossEntropy is softmax cross entropy over logits. With a weight vector the mean
// is taken over the summed weights of the targets, not the batch size.
type CrossEntropy struct {
	name   string
	opts   crossEntropyOptions
	weight []float32
}

func decodeCrossEntropy(component string, args config.Args) (o crossEntropyOptions, err error) {
	o.Reduction = mean
	if err = args.Decode(component, &o); err != nil {
		return
	}
	if err = o.Reduction.check(component); err != nil {
		return
	}
	if o.LabelSmoothing < 0 || o.LabelSmoothing >= 1 {
		err = config.InvalidField(component, "label_smoothing", "must be in [0, 1), got %g", o.LabelSmoothing)
	}
	return
}

func NewCrossEntropy(args config.Args) (Loss, error) {
	o, err := decodeCrossEntropy("cel", args)
	if err != nil {
		return nil, err
	}
	return &CrossEntropy{name: "cel", opts: o}, nil
}

func NewWeightedCrossEntropy(args config.Args, weight []float32) (Loss, error) {
	o, err := decodeCrossEntropy("wcel", args)
	if err != nil {
		return nil, err
	}
	for i, w := range weight {
		if w < 0 || math.IsNaN(float64(w)) {
			return nil, fmt.Errorf("class %d: invalid weight %g", i, w)
		}
	}
	return &CrossEntropy{name: "wcel", opts: o, weight: append([]float32(nil), weight...)}, nil
}

func (l *CrossEntropy) Name() string      { return l.name }
func (l *CrossEntropy) Weight() []float32 { return l.weight }

func (l *CrossEntropy) Forward(outputs [][]float32, targets []int) (float64, error) {
	if err := checkBatch(outputs, targets); err != nil {
		return 0, err
	}
	var total, norm float64
	eps := l.opts.LabelSmoothing
	for i, o := range outputs {
		if l.weight != nil && len(o) != len(l.weight) {
			return 0, fmt.Errorf("sample %d: %d logits, %d class weights", i, len(o), len(l.weight))
		}
		lse := logSumExp(o)
		k := float64(len(o))
		var nll float64
		for c, v := range o {
			q := eps / k
			if c == targets[i] {
				q += 1 - eps
			}
			if q != 0 {
				nll -= q * (float64(v) - lse)
			}
		}
		w := 1.0
		if l.weight != nil {
			w = float64(l.weight[targets[i]])
		}
		total += w * nll
		norm += w
	}
	if l.opts.Reduction == sum {
		return total, nil
	}
	if norm == 0 {
		return 0, nil
	}
	return total / norm, nil
}

func logSumExp(x []float32) float64 {
	peak := math.Inf(-1)
	for _, v := range x {
		peak = math.Max(peak, float64(v))
	}
	var s float64
	for _, v := range x {
		s += math.Exp(float64(v) - peak)
	}
	return peak + math.Log(s)
}
