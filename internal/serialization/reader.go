package serialization

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

// ReadTensor reads a tensor written by WriteTensor.
func ReadTensor(r io.Reader) (*tensor.Tensor, error) {
	dec := &decoder{r: r}
	shape, data := dec.tensor("tensor")
	if dec.err != nil {
		return nil, dec.err
	}
	return tensor.FromSlice(data, shape...)
}

// decoder reads big-endian values and keeps the first error.
type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) read(v any) {
	if d.err != nil {
		return
	}
	if err := binary.Read(d.r, binary.BigEndian, v); err != nil {
		d.err = errors.Wrap(err, "read")
	}
}

func (d *decoder) int() int {
	var v int32
	d.read(&v)
	return int(v)
}

// count reads a length and checks it against limit.
func (d *decoder) count(what string, limit int) int {
	n := d.int()
	if d.err == nil && (n < 0 || n > limit) {
		d.err = &ValidationError{Kind: ErrInvalidHeader, Details: fmt.Sprintf("%s count %d outside [0, %d]", what, n, limit)}
	}
	if d.err != nil {
		return 0
	}
	return n
}

func (d *decoder) ints(what string, limit int) []int {
	n := d.count(what, limit)
	if n == 0 {
		return nil
	}
	vs := make([]int, n)
	for i := range vs {
		vs[i] = d.int()
	}
	return vs
}

func (d *decoder) string() string {
	n := d.count("string length", MaxTensorNameLen)
	if n == 0 {
		return ""
	}
	b := make([]byte, n)
	d.read(b)
	return string(b)
}

func (d *decoder) tensor(name string) ([]int, []float64) {
	shape := d.ints("rank", MaxRank)
	if d.err != nil {
		return nil, nil
	}
	if err := ValidateShape(name, shape); err != nil {
		d.err = err
		return nil, nil
	}
	data := make([]float64, numElements(shape))
	d.read(data)
	return shape, data
}

func (d *decoder) spec() nn.LayerSpec {
	var s nn.LayerSpec
	s.Type = d.string()
	s.Shape = d.ints("rank", MaxRank)
	s.Units = d.int()
	s.Activation = d.string()
	d.read(&s.Alpha)
	d.read(&s.Rate)
	d.read(&s.Seed)
	s.Init = d.string()
	s.Filters = d.int()
	s.KernelH = d.int()
	s.KernelW = d.int()
	s.PoolH = d.int()
	s.PoolW = d.int()
	return s
}

// decodeBinary parses a .nn file after checking its magic, version and checksum.
func decodeBinary(data []byte) (*Document, error) {
	if len(data) < len(MagicBytes)+4+ChecksumSize || string(data[:len(MagicBytes)]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	version := binary.BigEndian.Uint32(data[len(MagicBytes):])
	if version != FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", version, FormatVersion)
	}

	body := data[:len(data)-ChecksumSize]
	var stored [ChecksumSize]byte
	copy(stored[:], data[len(body):])
	if err := ValidateChecksum(ComputeChecksum(body), stored); err != nil {
		return nil, err
	}

	dec := &decoder{r: bytes.NewReader(body[len(MagicBytes)+4:])}
	doc := &Document{FormatVersion: int(version)}

	var id uuid.UUID
	dec.read(id[:])
	doc.ModelID = id.String()
	doc.Loss = dec.string()
	doc.InputShape = dec.ints("rank", MaxRank)

	layers := dec.count("layer", MaxLayerCount)
	for i := 0; i < layers && dec.err == nil; i++ {
		doc.Layers = append(doc.Layers, dec.spec())
	}

	params := dec.count("parameter", MaxTensorCount)
	for i := 0; i < params && dec.err == nil; i++ {
		name := dec.string()
		shape, values := dec.tensor(name)
		doc.Parameters = append(doc.Parameters, TensorData{Name: name, Shape: shape, Data: values})
	}
	if dec.err != nil {
		return nil, errors.Wrap(dec.err, "decode model")
	}
	return doc, nil
}
