//go:build !cuda

package device

import "errors"

var errNoCUDA = errors.New("built without cuda support")

func cudaDevices() (int, error) {
	return 0, errNoCUDA
}

func cudaName(int) (string, error) {
	return "", errNoCUDA
}
