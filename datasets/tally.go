package datasets

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/neurlang/trainkit/config"
)

// Tally counts samples per class label.
type Tally struct {
	mut    sync.Mutex
	counts []int
	total  int
}

// NewTally prepares a tally over classes labels.
func NewTally(classes int) *Tally {
	return &Tally{counts: make([]int, classes)}
}

// TallyLabels counts the labels of ds.
func TallyLabels(ds Dataset) *Tally {
	t := NewTally(ds.NumClasses())
	for i := 0; i < ds.Len(); i++ {
		t.Add(ds.Label(i))
	}
	return t
}

// Add votes for label. Labels outside the class range are ignored.
func (t *Tally) Add(label int) {
	t.mut.Lock()
	if label >= 0 && label < len(t.counts) {
		t.counts[label]++
		t.total++
	}
	t.mut.Unlock()
}

// Len is the number of counted samples.
func (t *Tally) Len() int {
	t.mut.Lock()
	defer t.mut.Unlock()
	return t.total
}

// Count is the number of samples with label.
func (t *Tally) Count(label int) int {
	t.mut.Lock()
	defer t.mut.Unlock()
	return t.counts[label]
}

// Counts returns a copy of the per-class counts.
func (t *Tally) Counts() []int {
	t.mut.Lock()
	defer t.mut.Unlock()
	return append([]int(nil), t.counts...)
}

// Weights is the balanced class weight N/(K*count). Absent classes get 0.
func (t *Tally) Weights() []float32 {
	t.mut.Lock()
	defer t.mut.Unlock()
	w := make([]float32, len(t.counts))
	k := float64(len(t.counts))
	for c, n := range t.counts {
		if n > 0 {
			w[c] = float32(float64(t.total) / (k * float64(n)))
		}
	}
	return w
}

// ClassWeightArg is the class_weight key every bundled dataset accepts.
const ClassWeightArg = "class_weight"

// ResolveClassWeight interprets a class_weight value: absent means none, "balanced"
// (or "auto") derives weights from labels, and a list is used as given.
func ResolveClassWeight(component string, v any, labels []int, classes int) ([]float32, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		switch strings.ToLower(v) {
		case "balanced", "auto":
			t := NewTally(classes)
			for _, l := range labels {
				t.Add(l)
			}
			return t.Weights(), nil
		case "", "none":
			return nil, nil
		}
		return nil, config.InvalidField(component, ClassWeightArg, "unknown mode %q", v)
	}
	var w []float32
	if err := mapstructure.WeakDecode(v, &w); err != nil {
		return nil, config.InvalidField(component, ClassWeightArg, "%v", err)
	}
	if len(w) != classes {
		return nil, config.InvalidField(component, ClassWeightArg, "has %d entries for %d classes", len(w), classes)
	}
	for i, f := range w {
		if f < 0 {
			return nil, config.InvalidField(component, ClassWeightArg, "entry %d is negative", i)
		}
	}
	return w, nil
}

// SplitClassWeight removes class_weight from args so the rest can be decoded strictly.
func SplitClassWeight(args config.Args) (rest config.Args, classWeight any) {
	if !args.Has(ClassWeightArg) {
		return args, nil
	}
	rest = args.Clone()
	classWeight = rest[ClassWeightArg]
	delete(rest, ClassWeightArg)
	return rest, classWeight
}

func (t *Tally) String() string {
	return fmt.Sprint(t.Counts())
}
