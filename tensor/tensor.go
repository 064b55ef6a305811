// Package tensor holds the dense float32 containers passed between datasets, transforms and models.
package tensor

import "fmt"

// Tensor is a dense row-major float32 array.
type Tensor struct {
	Shape []int
	Data  []float32
}

// New allocates a zeroed tensor of the given shape.
func New(shape ...int) Tensor {
	return Tensor{Shape: append([]int(nil), shape...), Data: make([]float32, Volume(shape))}
}

// FromBytes converts raw bytes (pixels) into a tensor without scaling.
func FromBytes(b []byte, shape ...int) (Tensor, error) {
	if Volume(shape) != len(b) {
		return Tensor{}, fmt.Errorf("tensor: %d bytes do not fill shape %v", len(b), shape)
	}
	t := New(shape...)
	for i, v := range b {
		t.Data[i] = float32(v)
	}
	return t, nil
}

// Volume is the number of elements a shape holds.
func Volume(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Len returns the number of elements.
func (t Tensor) Len() int {
	return len(t.Data)
}

// Clone returns a deep copy.
func (t Tensor) Clone() Tensor {
	return Tensor{
		Shape: append([]int(nil), t.Shape...),
		Data:  append([]float32(nil), t.Data...),
	}
}

// CHW unpacks a rank 3 shape, treating rank 2 as a single channel.
func (t Tensor) CHW() (c, h, w int, err error) {
	switch len(t.Shape) {
	case 2:
		return 1, t.Shape[0], t.Shape[1], nil
	case 3:
		return t.Shape[0], t.Shape[1], t.Shape[2], nil
	}
	return 0, 0, 0, fmt.Errorf("tensor: expected an image shape, got %v", t.Shape)
}
