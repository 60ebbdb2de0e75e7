package dataset

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/tensor"
)

// IDX magic numbers (http://yann.lecun.com/exdb/mnist/).
const (
	idxImagesMagic uint32 = 0x00000803
	idxLabelsMagic uint32 = 0x00000801
)

// ErrInvalidIDX is returned for files that are not IDX image or label files.
var ErrInvalidIDX = errors.New("dataset: invalid IDX file")

// ReadIDXImages reads an IDX image file.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(r io.Reader) (images [][]byte, rows, cols int, err error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, 0, 0, errors.Wrap(ErrInvalidIDX, err.Error())
	}
	if header[0] != idxImagesMagic {
		return nil, 0, 0, errors.Wrapf(ErrInvalidIDX, "image magic %#08x", header[0])
	}

	n, rows, cols := int(header[1]), int(header[2]), int(header[3])
	images = make([][]byte, n)
	for i := range images {
		images[i] = make([]byte, rows*cols)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, 0, 0, errors.Wrapf(ErrInvalidIDX, "image %d: %v", i, err)
		}
	}
	return images, rows, cols, nil
}

// ReadIDXLabels reads an IDX label file.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(r io.Reader) ([]byte, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(ErrInvalidIDX, err.Error())
	}
	if header[0] != idxLabelsMagic {
		return nil, errors.Wrapf(ErrInvalidIDX, "label magic %#08x", header[0])
	}

	labels := make([]byte, header[1])
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, errors.Wrapf(ErrInvalidIDX, "labels: %v", err)
	}
	return labels, nil
}

// LoadIDX loads an image file and its label file as a classification dataset.
//
// Inputs have shape (1, rows, cols) with pixels scaled to [0, 1]. Targets are one-hot vectors
// of length classes. maxSamples <= 0 loads every sample.
func LoadIDX(imagesPath, labelsPath string, classes, maxSamples int) (*Dataset, error) {
	images, rows, cols, err := readImagesFile(imagesPath)
	if err != nil {
		return nil, err
	}
	labels, err := readLabelsFile(labelsPath)
	if err != nil {
		return nil, err
	}
	if len(images) != len(labels) {
		return nil, errors.Wrapf(ErrLengthMismatch, "%d images, %d labels", len(images), len(labels))
	}

	n := len(images)
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}
	if n == 0 {
		return nil, errors.Wrap(ErrEmpty, imagesPath)
	}

	samples := make([]Sample, n)
	for i := range samples {
		if int(labels[i]) >= classes {
			return nil, errors.Wrapf(tensor.ErrIndexOutOfRange, "dataset: label %d of sample %d, %d classes", labels[i], i, classes)
		}
		x := tensor.New(1, rows, cols)
		data := x.Data()
		for j, p := range images[i] {
			data[j] = float64(p) / 255
		}
		samples[i] = Sample{Input: x, Target: OneHot(int(labels[i]), classes)}
	}
	return &Dataset{samples: samples}, nil
}

func readImagesFile(path string) ([][]byte, int, int, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for data loading
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, "dataset")
	}
	defer f.Close()
	return ReadIDXImages(f)
}

func readLabelsFile(path string) ([]byte, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for data loading
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "dataset")
	}
	defer f.Close()
	return ReadIDXLabels(f)
}

// Synthetic creates n images of size x size with a horizontal band whose position encodes
// the class (sample i has class i mod classes). It stands in for real digit files when
// demonstrating or testing a convolutional pipeline.
func Synthetic(n, classes, size int) (*Dataset, error) {
	if n < 1 || classes < 1 || size < 4 {
		return nil, errors.Errorf("dataset: synthetic needs n >= 1, classes >= 1, size >= 4, got %d, %d, %d", n, classes, size)
	}

	band := max(size*2/7, 1)
	margin := size / 5
	samples := make([]Sample, n)
	for i := range samples {
		class := i % classes
		start := 0
		if classes > 1 {
			start = class * (size - band) / (classes - 1)
		}

		x := tensor.New(1, size, size)
		for row := start; row < start+band; row++ {
			for col := margin; col < size-margin; col++ {
				x.Set(0.8, 0, row, col)
			}
		}
		samples[i] = Sample{Input: x, Target: OneHot(class, classes)}
	}
	return &Dataset{samples: samples}, nil
}
