//go:build cuda

package device

import "gorgonia.org/cu"

func cudaDevices() (int, error) {
	return cu.NumDevices()
}

func cudaName(i int) (string, error) {
	return cu.Device(i).Name()
}
