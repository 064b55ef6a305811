// Package quantization snaps model weights and optimizer gradients to a fixed bit width.
//
// Widths of 2 to 16 bits use symmetric per-tensor integer codes. One bit keeps only the
// sign of every weight, packed into a quaternary filter, and the mean magnitude as scale.
package quantization

import (
	"fmt"
	"math"

	"github.com/neurlang/quaternary"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/models"
)

// MaxBits is the widest supported code.
const MaxBits = 16

// Tensor is the quantized form of one parameter.
type Tensor struct {
	Name  string
	Scale float32

	// Codes holds the integer level of every element; -1 or 1 for one bit.
	Codes []int16

	// Signs is the packed sign filter of a one bit tensor, nil otherwise.
	Signs []byte
}

// Size is the storage footprint in bytes, scale excluded.
func (t *Tensor) Size() int {
	if t.Signs != nil {
		return len(t.Signs)
	}
	return len(t.Codes) * 2
}

// Value returns element i in floating point.
func (t *Tensor) Value(i int) float32 {
	return float32(t.Codes[i]) * t.Scale
}

// Model is a model whose parameters were snapped to the quantization grid.
// The parameters stay float32 so optimizers keep working on them.
type Model struct {
	models.Model
	Bits    int
	Tensors []Tensor
}

func (m *Model) Name() string {
	return fmt.Sprintf("%s(int%d)", m.Model.Name(), m.Bits)
}

// Unwrap returns the float model the quantized one was derived from.
func (m *Model) Unwrap() models.Model {
	return m.Model
}

// Quantize is a models.Quantizer: it quantizes every parameter of m with
// spec.QuantArgs bits (8 when unset) and writes the dequantized values back.
func Quantize(m models.Model, spec config.ModelSpec) (models.Model, error) {
	bits := spec.QuantArgs.BitsOrDefault()
	if bits < 1 || bits > MaxBits {
		return nil, config.InvalidField("model", "quant_args.bits", "must be between 1 and %d, got %d", MaxBits, bits)
	}
	q := &Model{Model: m, Bits: bits}
	for _, p := range m.Parameters() {
		t := quantizeTensor(p.Name, p.Data, bits)
		for i := range p.Data {
			p.Data[i] = t.Value(i)
		}
		q.Tensors = append(q.Tensors, t)
	}
	return q, nil
}

func quantizeTensor(name string, x []float32, bits int) Tensor {
	t := Tensor{Name: name}
	if bits == 1 {
		signs := make(map[uint32]bool, len(x))
		t.Codes = make([]int16, len(x))
		var sum float64
		for i, v := range x {
			signs[uint32(i)] = v >= 0
			t.Codes[i] = -1
			if v >= 0 {
				t.Codes[i] = 1
			}
			sum += math.Abs(float64(v))
		}
		if len(x) > 0 {
			t.Scale = float32(sum / float64(len(x)))
		}
		t.Signs = []byte(quaternary.Make(signs))
		return t
	}
	t.Scale, t.Codes = codes(x, bits)
	return t
}

// codes maps x onto the symmetric grid [-levels, levels] with levels = 2^(bits-1)-1.
func codes(x []float32, bits int) (scale float32, c []int16) {
	levels := float64(int(1)<<(bits-1) - 1)
	var peak float64
	for _, v := range x {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	c = make([]int16, len(x))
	if peak == 0 {
		return 0, c
	}
	s := peak / levels
	for i, v := range x {
		c[i] = int16(math.Max(-levels, math.Min(levels, math.Round(float64(v)/s))))
	}
	return float32(s), c
}

// Snap rounds x in place to the grid for bits.
func Snap(x []float32, bits int) {
	if bits == 1 {
		var sum float64
		for _, v := range x {
			sum += math.Abs(float64(v))
		}
		if len(x) == 0 {
			return
		}
		mean := float32(sum / float64(len(x)))
		for i, v := range x {
			if v >= 0 {
				x[i] = mean
			} else {
				x[i] = -mean
			}
		}
		return
	}
	scale, c := codes(x, bits)
	for i := range x {
		x[i] = float32(c[i]) * scale
	}
}

var _ models.Quantizer = Quantize
