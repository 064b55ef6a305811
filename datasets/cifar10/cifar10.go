// Package cifar10 reads the CIFAR-10 binary distribution.
//
// root must contain data_batch_1.bin .. data_batch_5.bin and test_batch.bin, either directly
// or under cifar-10-batches-bin/. Each record is one label byte followed by 3x32x32 pixel bytes.
package cifar10

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/neurlang/trainkit/config"
	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/tensor"
)

const (
	Classes  = 10
	Channels = 3
	Size     = 32

	recordSize = 1 + Channels*Size*Size
	batchDir   = "cifar-10-batches-bin"
)

var (
	trainFiles = []string{"data_batch_1.bin", "data_batch_2.bin", "data_batch_3.bin", "data_batch_4.bin", "data_batch_5.bin"}
	testFiles  = []string{"test_batch.bin"}
)

type options struct {
	Root     string `yaml:"root"`
	Download bool   `yaml:"download"`
}

// New loads the train (50000 images) or test (10000 images) partition.
// Pixels are raw 0..255 values; use the to_tensor transform to scale them.
func New(opts datasets.Options) (datasets.Dataset, error) {
	args, cw := datasets.SplitClassWeight(opts.Args)
	if err := args.Require("cifar10", "root"); err != nil {
		return nil, err
	}
	var o options
	if err := args.Decode("cifar10", &o); err != nil {
		return nil, err
	}
	if o.Download {
		return nil, config.InvalidField("cifar10", "download", "is not supported, place the binary batches under %s", o.Root)
	}
	files := testFiles
	if opts.Train {
		files = trainFiles
	}
	inputs, labels, err := Read(context.Background(), resolveRoot(o.Root), files)
	if err != nil {
		return nil, err
	}
	m, err := datasets.NewMemory(inputs, labels, Classes, opts.Transform)
	if err != nil {
		return nil, err
	}
	w, err := datasets.ResolveClassWeight("cifar10", cw, labels, Classes)
	if err != nil {
		return nil, err
	}
	if err := m.SetClassWeight(w); err != nil {
		return nil, err
	}
	return m, nil
}

func resolveRoot(root string) string {
	nested := filepath.Join(root, batchDir)
	if st, err := os.Stat(nested); err == nil && st.IsDir() {
		return nested
	}
	return root
}

// Read decodes files concurrently and concatenates them in the listed order.
func Read(ctx context.Context, dir string, files []string) ([]tensor.Tensor, []int, error) {
	type batch struct {
		inputs []tensor.Tensor
		labels []int
	}
	batches := make([]batch, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return err
			}
			in, lb, err := Decode(b)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			batches[i] = batch{in, lb}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	var inputs []tensor.Tensor
	var labels []int
	for _, b := range batches {
		inputs = append(inputs, b.inputs...)
		labels = append(labels, b.labels...)
	}
	return inputs, labels, nil
}

// Decode splits a binary batch into CHW images and labels.
func Decode(b []byte) ([]tensor.Tensor, []int, error) {
	if len(b)%recordSize != 0 {
		return nil, nil, fmt.Errorf("size %d is not a multiple of the %d byte record", len(b), recordSize)
	}
	n := len(b) / recordSize
	inputs := make([]tensor.Tensor, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		rec := b[i*recordSize : (i+1)*recordSize]
		if rec[0] >= Classes {
			return nil, nil, fmt.Errorf("record %d: label %d", i, rec[0])
		}
		labels[i] = int(rec[0])
		x, err := tensor.FromBytes(rec[1:], Channels, Size, Size)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		inputs[i] = x
	}
	return inputs, labels, nil
}
