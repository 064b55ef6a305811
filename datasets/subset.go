package datasets

import (
	"encoding/hex"

	"github.com/neurlang/trainkit/parallel"
	"github.com/neurlang/trainkit/tensor"
	"github.com/neurlang/trainkit/transforms"
)

// Subset is a view of selected parent indices. It reads raw samples from the parent
// and applies the parent transform unless rebound. ClassWeight is the parent's, computed
// over every parent sample rather than over the selected indices.
type Subset struct {
	parent    Dataset
	indices   []int
	transform transforms.Transform
}

// NewSubset views parent through indices, which it takes ownership of.
func NewSubset(parent Dataset, indices []int) *Subset {
	return &Subset{parent: parent, indices: indices}
}

func (s *Subset) Len() int               { return len(s.indices) }
func (s *Subset) Label(i int) int        { return s.parent.Label(s.indices[i]) }
func (s *Subset) NumClasses() int        { return s.parent.NumClasses() }
func (s *Subset) ClassWeight() []float32 { return s.parent.ClassWeight() }
func (s *Subset) Parent() Dataset        { return s.parent }

func (s *Subset) Raw(i int) (tensor.Tensor, error) {
	return s.parent.Raw(s.indices[i])
}

func (s *Subset) Transform() transforms.Transform {
	if s.transform != nil {
		return s.transform
	}
	return s.parent.Transform()
}

// Rebind replaces the transform of this view only; the parent and sibling views keep theirs.
func (s *Subset) Rebind(tf transforms.Transform) {
	if tf == nil {
		tf = transforms.Identity
	}
	s.transform = tf
}

// Indices returns a copy of the parent indices in view order.
func (s *Subset) Indices() []int {
	return append([]int(nil), s.indices...)
}

// Digest fingerprints the index order.
func (s *Subset) Digest() string {
	return digest(len(s.indices), func(i int) int { return s.indices[i] })
}

func digest(n int, at func(int) int) string {
	h := parallel.NewHasher(n)
	for i := 0; i < n; i++ {
		h.MustPutUint32(i, uint32(at(i)))
	}
	sum := h.Sum()
	return hex.EncodeToString(sum[:])
}

// Digest fingerprints the sample order of ds: the index order for a Subset,
// the identity order for anything else.
func Digest(ds Dataset) string {
	if s, ok := ds.(*Subset); ok {
		return s.Digest()
	}
	return digest(ds.Len(), func(i int) int { return i })
}
