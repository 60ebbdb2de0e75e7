package dataset

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqnet/internal/tensor"
)

func idxImages(t *testing.T, rows, cols int, images ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, [4]uint32{idxImagesMagic, uint32(len(images)), uint32(rows), uint32(cols)}))
	for _, img := range images {
		buf.Write(img)
	}
	return buf.Bytes()
}

func idxLabels(t *testing.T, labels ...byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, [2]uint32{idxLabelsMagic, uint32(len(labels))}))
	buf.Write(labels)
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestReadIDX(t *testing.T) {
	raw := idxImages(t, 2, 2, []byte{0, 255, 51, 102}, []byte{1, 2, 3, 4})
	images, rows, cols, err := ReadIDXImages(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, [][]byte{{0, 255, 51, 102}, {1, 2, 3, 4}}, images)

	labels, err := ReadIDXLabels(bytes.NewReader(idxLabels(t, 7, 3)))
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 3}, labels)
}

func TestReadIDX_Invalid(t *testing.T) {
	// Label file read as images.
	_, _, _, err := ReadIDXImages(bytes.NewReader(idxLabels(t, 1)))
	assert.True(t, errors.Is(err, ErrInvalidIDX))

	_, err = ReadIDXLabels(bytes.NewReader(idxImages(t, 1, 1, []byte{0})))
	assert.True(t, errors.Is(err, ErrInvalidIDX))

	// Truncated pixel data.
	raw := idxImages(t, 2, 2, []byte{1, 2, 3, 4})
	_, _, _, err = ReadIDXImages(bytes.NewReader(raw[:len(raw)-1]))
	assert.True(t, errors.Is(err, ErrInvalidIDX))

	_, err = ReadIDXLabels(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrInvalidIDX))
}

func TestLoadIDX(t *testing.T) {
	dir := t.TempDir()
	images := writeFile(t, dir, "images", idxImages(t, 2, 2, []byte{0, 255, 51, 102}, []byte{255, 0, 0, 0}, []byte{0, 0, 0, 0}))
	labels := writeFile(t, dir, "labels", idxLabels(t, 2, 0, 1))

	d, err := LoadIDX(images, labels, 3, 0)
	require.NoError(t, err)
	require.Equal(t, 3, d.Len())

	s := d.At(0)
	assert.Equal(t, tensor.Shape{1, 2, 2}, s.Input.Shape())
	assert.InDeltaSlice(t, []float64{0, 1, 0.2, 0.4}, s.Input.Values(), 1e-12)
	assert.Equal(t, []float64{0, 0, 1}, s.Target.Values())

	d, err = LoadIDX(images, labels, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	_, err = LoadIDX(images, labels, 2, 0)
	assert.True(t, errors.Is(err, tensor.ErrIndexOutOfRange))

	short := writeFile(t, dir, "short", idxLabels(t, 1))
	_, err = LoadIDX(images, short, 3, 0)
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = LoadIDX(filepath.Join(dir, "missing"), labels, 3, 0)
	assert.Error(t, err)
}

func TestSynthetic(t *testing.T) {
	d, err := Synthetic(20, 10, 28)
	require.NoError(t, err)
	require.Equal(t, 20, d.Len())

	for i := 0; i < 10; i++ {
		s := d.At(i)
		assert.Equal(t, tensor.Shape{1, 28, 28}, s.Input.Shape())
		assert.Equal(t, i, s.Target.ArgMaxFlat())
		// 8 rows of 18 bright pixels.
		assert.InDelta(t, 8*18*0.8, s.Input.Sum(), 1e-9)
		// Same class, same image.
		assert.True(t, s.Input.Equal(d.At(i+10).Input))
	}
	assert.False(t, d.At(0).Input.Equal(d.At(1).Input))

	_, err = Synthetic(0, 10, 28)
	assert.Error(t, err)
}
