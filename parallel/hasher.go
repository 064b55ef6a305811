package parallel

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// chunk is the number of values hashed by one worker.
const chunk = 4096

// Hasher fingerprints an ordered sequence of uint32 values.
// Values may be put concurrently at distinct positions; chunks are hashed in parallel
// and the chunk digests are hashed again in order, so the sum only depends on the sequence.
type Hasher struct {
	values []uint32
}

// NewHasher allocates a hasher for n values.
func NewHasher(n int) *Hasher {
	return &Hasher{values: make([]uint32, n)}
}

// MustPutUint32 stores value v at position n.
func (h *Hasher) MustPutUint32(n int, v uint32) {
	if n < 0 || n >= len(h.values) {
		panic(fmt.Sprintf("parallel: hasher position %d out of range [0, %d)", n, len(h.values)))
	}
	h.values[n] = v
}

// Sum returns the sha256 fingerprint of the stored sequence.
func (h *Hasher) Sum() [32]byte {
	chunks := (len(h.values) + chunk - 1) / chunk
	digests := make([][32]byte, chunks)

	_ = ForEach(context.Background(), chunks, chunks, func(c int) error {
		end := min((c+1)*chunk, len(h.values))
		buf := make([]byte, 0, 4*(end-c*chunk))
		for _, v := range h.values[c*chunk : end] {
			buf = binary.LittleEndian.AppendUint32(buf, v)
		}
		digests[c] = sha256.Sum256(buf)
		return nil
	})

	outer := sha256.New()
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(h.values)))
	outer.Write(n[:])
	for _, d := range digests {
		outer.Write(d[:])
	}
	var out [32]byte
	copy(out[:], outer.Sum(nil))
	return out
}
