// Package mnist reads the gzipped IDX distribution of the MNIST digits.
package mnist

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/ptr"

	"github.com/neurlang/trainkit/datasets"
	"github.com/neurlang/trainkit/tensor"
)

func userHomeDir() string {
	dirname, err := os.UserHomeDir()
	if err != nil {
		return "~"
	}
	return dirname
}

const tmpDirectory = `/tmp/mnist/`

// searchDirectories are tried in order when init_args.root is not set.
var searchDirectories = []string{tmpDirectory, filepath.Join(userHomeDir(), ".cache", "mnist")}

const (
	inferSetImg = "t10k-images-idx3-ubyte.gz"
	inferSetVal = "t10k-labels-idx1-ubyte.gz"
	trainSetImg = "train-images-idx3-ubyte.gz"
	trainSetVal = "train-labels-idx1-ubyte.gz"
)

var digests = map[string]string{
	inferSetImg: "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
	inferSetVal: "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
	trainSetImg: "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
	trainSetVal: "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
}

const (
	Classes = 10

	// original
	ImgSize = 28

	// downscaled
	SmallImgSize = 13
)

type options struct {
	Root   string `yaml:"root"`
	Small  bool   `yaml:"small"`
	Verify *bool  `yaml:"verify"`
}

// New loads the train (60000) or test (10000) digits as 1xHxW tensors of raw 0..255 values.
// With small set every image is max pooled down to 13x13. Files are checked against their
// published sha256 digests unless verify is false.
func New(opts datasets.Options) (datasets.Dataset, error) {
	args, cw := datasets.SplitClassWeight(opts.Args)
	var o options
	if err := args.Decode("mnist", &o); err != nil {
		return nil, err
	}
	imgName, valName := inferSetImg, inferSetVal
	if opts.Train {
		imgName, valName = trainSetImg, trainSetVal
	}
	dir, err := findDirectory(o.Root, imgName, valName)
	if err != nil {
		return nil, err
	}

	var img, val []byte
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() (err error) {
		img, err = readFile(filepath.Join(dir, imgName), ptr.Deref(o.Verify, true))
		return
	})
	g.Go(func() (err error) {
		val, err = readFile(filepath.Join(dir, valName), ptr.Deref(o.Verify, true))
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inputs, labels, err := Decode(img, val, o.Small)
	if err != nil {
		return nil, err
	}
	m, err := datasets.NewMemory(inputs, labels, Classes, opts.Transform)
	if err != nil {
		return nil, err
	}
	w, err := datasets.ResolveClassWeight("mnist", cw, labels, Classes)
	if err != nil {
		return nil, err
	}
	if err := m.SetClassWeight(w); err != nil {
		return nil, err
	}
	return m, nil
}

func findDirectory(root string, names ...string) (string, error) {
	dirs := searchDirectories
	if root != "" {
		dirs = []string{root}
	}
outer:
	for _, dir := range dirs {
		for _, name := range names {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				continue outer
			}
		}
		return dir, nil
	}
	return "", fmt.Errorf("mnist files %v not found in %v: %w", names, dirs, os.ErrNotExist)
}

func readFile(path string, verify bool) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if verify {
		sum := sha256.Sum256(raw)
		if want := digests[filepath.Base(path)]; hex.EncodeToString(sum[:]) != want {
			return nil, fmt.Errorf("file hash for file '%s' is incorrect", path)
		}
	}
	gzipReader, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip file '%s': %w", path, err)
	}
	defer gzipReader.Close()
	var uncompressedBuffer bytes.Buffer
	if _, err := uncompressedBuffer.ReadFrom(gzipReader); err != nil {
		return nil, fmt.Errorf("buffering file '%s': %w", path, err)
	}
	return uncompressedBuffer.Bytes(), nil
}

func max4(a, b, c, d byte) (o byte) {
	return max(a, b, c, d)
}

// Decode parses uncompressed IDX image and label files.
func Decode(img, val []byte, small bool) ([]tensor.Tensor, []int, error) {
	if len(img) < 16 || len(val) < 8 {
		return nil, nil, fmt.Errorf("truncated idx header")
	}
	// skip headers
	img, val = img[16:], val[8:]
	if len(img)%(ImgSize*ImgSize) != 0 {
		return nil, nil, fmt.Errorf("image data of %d bytes is not a whole number of %dx%d images", len(img), ImgSize, ImgSize)
	}
	numberImages := len(img) / (ImgSize * ImgSize)
	if numberImages != len(val) {
		return nil, nil, fmt.Errorf("%d images for %d labels", numberImages, len(val))
	}

	inputs := make([]tensor.Tensor, numberImages)
	labels := make([]int, numberImages)
	for i := range inputs {
		labels[i] = int(val[i])
		ptr := (ImgSize * ImgSize) * i
		if !small {
			x, err := tensor.FromBytes(img[ptr:ptr+ImgSize*ImgSize], 1, ImgSize, ImgSize)
			if err != nil {
				return nil, nil, err
			}
			inputs[i] = x
			continue
		}
		var downscaled [SmallImgSize * SmallImgSize]byte
		for y := 0; y < SmallImgSize; y++ {
			for x := 0; x < SmallImgSize; x++ {
				var base = ptr + 1 + ImgSize
				downscaled[y*SmallImgSize+x] = max4(
					img[base+(2*x)+(2*y*ImgSize)],
					img[base+(2*x)+(2*y*ImgSize)+1],
					img[base+(2*x)+(2*y*ImgSize)+ImgSize],
					img[base+(2*x)+(2*y*ImgSize)+ImgSize+1],
				)
			}
		}
		x, err := tensor.FromBytes(downscaled[:], 1, SmallImgSize, SmallImgSize)
		if err != nil {
			return nil, nil, err
		}
		inputs[i] = x
	}
	return inputs, labels, nil
}
