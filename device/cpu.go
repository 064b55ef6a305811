package device

import "github.com/klauspost/cpuid/v2"

func probeCPU() Device {
	d := Device{Kind: CPU, Name: cpuid.CPU.BrandName}
	if cpuid.CPU.Supports(cpuid.AVX2) {
		d.Features = append(d.Features, "avx2")
	}
	if cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ) {
		d.Features = append(d.Features, "avx512")
	}
	return d
}

// Threads is the logical core count, at least 1. The loader uses it when num_worker is unset.
func Threads() int {
	return max(cpuid.CPU.LogicalCores, 1)
}
