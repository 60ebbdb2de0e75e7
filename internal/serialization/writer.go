package serialization

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

// WriteTensor writes t as an int32 rank, one int32 per dimension and the elements as
// float64 in logical order, all big-endian.
func WriteTensor(w io.Writer, t *tensor.Tensor) error {
	enc := &encoder{w: w}
	enc.tensor(t.Shape(), t.Values())
	return enc.err
}

// encoder writes big-endian values and keeps the first error.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) write(v any) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.BigEndian, v)
}

func (e *encoder) int(v int) { e.write(int32(v)) }

func (e *encoder) ints(vs []int) {
	e.int(len(vs))
	for _, v := range vs {
		e.int(v)
	}
}

func (e *encoder) string(s string) {
	e.int(len(s))
	if e.err == nil {
		_, e.err = io.WriteString(e.w, s)
	}
}

func (e *encoder) tensor(shape []int, data []float64) {
	e.ints(shape)
	e.write(data)
}

func (e *encoder) spec(s nn.LayerSpec) {
	e.string(s.Type)
	e.ints(s.Shape)
	e.int(s.Units)
	e.string(s.Activation)
	e.write(s.Alpha)
	e.write(s.Rate)
	e.write(s.Seed)
	e.string(s.Init)
	e.int(s.Filters)
	e.int(s.KernelH)
	e.int(s.KernelW)
	e.int(s.PoolH)
	e.int(s.PoolW)
}

// encodeBinary renders doc in the .nn format, checksum included.
func encodeBinary(doc *Document) ([]byte, error) {
	id, err := uuid.Parse(doc.ModelID)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidHeader, "model id %q", doc.ModelID)
	}

	var buf bytes.Buffer
	enc := &encoder{w: &buf}
	enc.write([]byte(MagicBytes))
	enc.write(uint32(doc.FormatVersion))
	enc.write(id[:])
	enc.string(doc.Loss)
	enc.ints(doc.InputShape)

	enc.int(len(doc.Layers))
	for _, s := range doc.Layers {
		enc.spec(s)
	}

	enc.int(len(doc.Parameters))
	for _, p := range doc.Parameters {
		enc.string(p.Name)
		enc.tensor(p.Shape, p.Data)
	}
	if enc.err != nil {
		return nil, errors.Wrap(enc.err, "encode model")
	}

	sum := ComputeChecksum(buf.Bytes())
	buf.Write(sum[:])
	return buf.Bytes(), nil
}
