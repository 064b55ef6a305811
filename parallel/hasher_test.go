package parallel

import "testing"

// hasher test
func TestHasher(t *testing.T) {
	const n = 10000
	h1 := NewHasher(n)
	h2 := NewHasher(n)
	for i := 0; i < n; i++ {
		h1.MustPutUint32(i, uint32(i))
		h2.MustPutUint32(n-1-i, uint32(n-1-i))
	}
	if h1.Sum() != h2.Sum() {
		t.Errorf("put order changed the sum: %x != %x", h1.Sum(), h2.Sum())
	}

	h3 := NewHasher(n)
	for i := 0; i < n; i++ {
		h3.MustPutUint32(i, uint32(i))
	}
	h3.MustPutUint32(5000, 1)
	if h1.Sum() == h3.Sum() {
		t.Error("different sequences gave the same sum")
	}

	if NewHasher(0).Sum() == NewHasher(1).Sum() {
		t.Error("length is not part of the sum")
	}
}

func TestHasherPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	NewHasher(3).MustPutUint32(3, 0)
}
