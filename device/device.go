// Package device resolves the device section of an experiment into a concrete execution target.
package device

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/neurlang/trainkit/config"
)

// Kind is the device family.
type Kind string

const (
	CPU  Kind = "cpu"
	CUDA Kind = "cuda"
)

// Device is where the model runs.
type Device struct {
	Kind  Kind
	Index int

	// Parallel requests data parallel replication over every visible accelerator.
	Parallel bool

	// Benchmark lets kernels autotune for fixed input shapes. Set for accelerators.
	Benchmark bool

	// Name and Features describe the probed hardware, for logs and summaries.
	Name     string
	Features []string
}

// String is "cpu" or "cuda:<index>".
func (d Device) String() string {
	if d.Kind == CUDA {
		return fmt.Sprintf("cuda:%d", d.Index)
	}
	return string(d.Kind)
}

// IsAccelerator reports whether batches should be staged in pinned memory.
func (d Device) IsAccelerator() bool {
	return d.Kind == CUDA
}

// Resolve maps spec onto a device. A GPU request on a build or host without CUDA
// falls back to the CPU with a warning; an out of range gpu_id is an error.
func Resolve(spec config.DeviceSpec, log *zap.Logger) (Device, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !spec.UseGPU {
		return probeCPU(), nil
	}
	n, err := cudaDevices()
	if err != nil || n == 0 {
		log.Warn("cuda requested but unavailable, using cpu", zap.Int("gpu_id", spec.GPUID), zap.Error(err))
		return probeCPU(), nil
	}
	if spec.GPUID < 0 || spec.GPUID >= n {
		return Device{}, config.InvalidField("device", "gpu_id", "%d out of range, %d cuda device(s) visible", spec.GPUID, n)
	}
	name, err := cudaName(spec.GPUID)
	if err != nil {
		return Device{}, fmt.Errorf("cuda device %d: %w", spec.GPUID, err)
	}
	d := Device{
		Kind:      CUDA,
		Index:     spec.GPUID,
		Parallel:  spec.Parallel,
		Benchmark: true,
		Name:      name,
	}
	log.Debug("resolved device", zap.Stringer("device", d), zap.String("name", name))
	return d, nil
}

// ParallelIDs lists the devices a data parallel model spans: the primary first, then the rest.
func ParallelIDs(d Device) ([]int, error) {
	if !d.IsAccelerator() {
		return nil, nil
	}
	n, err := cudaDevices()
	if err != nil {
		return nil, err
	}
	ids := []int{d.Index}
	for i := 0; i < n; i++ {
		if i != d.Index {
			ids = append(ids, i)
		}
	}
	return ids, nil
}
