package serialization

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqnet/internal/loss"
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/optim"
	"github.com/born-ml/seqnet/internal/tensor"
)

func TestWriteTensor_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTensor(&buf, tensor.MustFromSlice([]float64{1.5, -2}, 2)))

	want := []byte{
		0, 0, 0, 1, // rank
		0, 0, 0, 2, // dim 0
		0x3f, 0xf8, 0, 0, 0, 0, 0, 0, // 1.5
		0xc0, 0, 0, 0, 0, 0, 0, 0, // -2
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestTensorRoundTrip(t *testing.T) {
	src, err := tensor.MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3).Transpose()
	require.NoError(t, err)
	require.False(t, src.IsContiguous())

	var buf bytes.Buffer
	require.NoError(t, WriteTensor(&buf, src))
	got, err := ReadTensor(&buf)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{3, 2}, got.Shape())
	assert.Equal(t, src.Values(), got.Values())
	assert.True(t, got.IsContiguous())
}

func TestReadTensor_Invalid(t *testing.T) {
	// rank 0
	_, err := ReadTensor(bytes.NewReader([]byte{0, 0, 0, 0}))
	assert.True(t, errors.Is(err, ErrInvalidTensor), "got %v", err)

	// rank 9
	_, err = ReadTensor(bytes.NewReader([]byte{0, 0, 0, 9}))
	assert.True(t, errors.Is(err, ErrInvalidHeader), "got %v", err)

	// negative dimension
	_, err = ReadTensor(bytes.NewReader([]byte{0, 0, 0, 1, 0xff, 0xff, 0xff, 0xff}))
	assert.True(t, errors.Is(err, ErrInvalidTensor), "got %v", err)

	// truncated data
	_, err = ReadTensor(bytes.NewReader([]byte{0, 0, 0, 1, 0, 0, 0, 2, 0x3f, 0xf8}))
	assert.Error(t, err)
}

func convModel(t *testing.T) *model.Sequential {
	t.Helper()
	m := model.New(
		nn.NewInput(1, 5, 5),
		nn.NewConv2D(2, 2, 2, nn.LeakyReLU{Alpha: 0.1}, nn.WithSeed(4)),
		nn.NewMaxPool2D(2, 2),
		nn.NewFlatten(),
		nn.NewDropout(0.5, nn.WithSeed(9)),
		nn.NewDense(3, nn.Softmax{}, nn.WithSeed(5)),
	)
	require.NoError(t, m.Compile(optim.NewAdam(optim.AdamConfig{}), loss.CategoricalCrossEntropy{}))
	return m
}

func sampleInput() *tensor.Tensor {
	x := tensor.New(1, 5, 5)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			x.Set(float64(i*5+j)/25, 0, i, j)
		}
	}
	return x
}

func assertSameOutput(t *testing.T, a, b *model.Sequential) {
	t.Helper()
	ya, err := a.Forward(sampleInput())
	require.NoError(t, err)
	want := ya.Values()
	yb, err := b.Forward(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, want, yb.Values())
}

func TestSaveLoad_Formats(t *testing.T) {
	for _, name := range []string{"model.nn", "model.yaml", "model.yml"} {
		t.Run(name, func(t *testing.T) {
			m := convModel(t)
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveModel(path, m))

			loaded, info, err := LoadModel(path)
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, info.ModelID)
			assert.Equal(t, FormatVersion, info.Version)
			assert.Equal(t, loss.NameCCE, info.Loss)

			assert.True(t, loaded.Built())
			assert.False(t, loaded.Compiled())
			assert.Equal(t, m.NumParams(), loaded.NumParams())
			assert.Equal(t, m.NumLayers(), loaded.NumLayers())
			for i := range m.Layers() {
				assert.Equal(t, m.Layer(i).Spec(), loaded.Layer(i).Spec())
			}
			assertSameOutput(t, m, loaded)
		})
	}
}

func TestWriteModel_NewIDPerSave(t *testing.T) {
	m := convModel(t)
	var a, b bytes.Buffer
	idA, err := WriteModel(&a, m)
	require.NoError(t, err)
	idB, err := WriteModel(&b, m)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)

	_, info, err := ReadModel(&a)
	require.NoError(t, err)
	assert.Equal(t, idA, info.ModelID)
}

func TestReadModel_Corruption(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteModel(&buf, convModel(t))
	require.NoError(t, err)
	data := buf.Bytes()

	flipped := append([]byte(nil), data...)
	flipped[len(flipped)/2] ^= 0xff
	_, _, err = ReadModel(bytes.NewReader(flipped))
	assert.True(t, errors.Is(err, ErrChecksumMismatch), "got %v", err)

	magic := append([]byte(nil), data...)
	copy(magic, "BORN")
	_, _, err = ReadModel(bytes.NewReader(magic))
	assert.True(t, errors.Is(err, ErrInvalidMagic))

	version := append([]byte(nil), data...)
	version[7] = 9
	_, _, err = ReadModel(bytes.NewReader(version))
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))

	_, _, err = ReadModel(bytes.NewReader(data[:10]))
	assert.True(t, errors.Is(err, ErrInvalidMagic))
}

func TestSaveModel_Errors(t *testing.T) {
	dir := t.TempDir()
	m := convModel(t)

	err := SaveModel(filepath.Join(dir, "model.json"), m)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, _, err = LoadModel(filepath.Join(dir, "model.bin"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, _, err = LoadModel(filepath.Join(dir, "missing.nn"))
	assert.True(t, os.IsNotExist(errors.Cause(err)))

	err = SaveModel(filepath.Join(dir, "unbuilt.nn"), model.New(nn.NewInput(2)))
	assert.True(t, errors.Is(err, nn.ErrNotBuilt))
}

func TestDocument_Mismatch(t *testing.T) {
	doc, err := NewDocument(convModel(t))
	require.NoError(t, err)
	assert.Equal(t, "1.conv2d.weight", doc.Parameters[0].Name)

	renamed := *doc
	renamed.Parameters = append([]TensorData(nil), doc.Parameters...)
	renamed.Parameters[0].Name = "1.other"
	_, err = renamed.Model()
	assert.True(t, errors.Is(err, ErrParameterMismatch))

	short := *doc
	short.Parameters = doc.Parameters[:3]
	_, err = short.Model()
	assert.True(t, errors.Is(err, ErrParameterMismatch))

	bad := *doc
	bad.Parameters = append([]TensorData(nil), doc.Parameters...)
	bad.Parameters[1].Data = bad.Parameters[1].Data[:1]
	_, err = bad.Model()
	assert.True(t, errors.Is(err, ErrInvalidTensor))

	unknown := *doc
	unknown.Layers = append([]nn.LayerSpec(nil), doc.Layers...)
	unknown.Layers[2].Type = "upsample2d"
	_, err = unknown.Model()
	assert.True(t, errors.Is(err, nn.ErrUnknownLayer))

	noID := *doc
	noID.ModelID = "not-a-uuid"
	_, err = noID.Model()
	assert.True(t, errors.Is(err, ErrInvalidHeader))
}

func TestReadModelYAML_Readable(t *testing.T) {
	m := model.New(nn.NewInput(2), nn.NewDense(1, nn.Sigmoid{}, nn.WithSeed(3)))
	require.NoError(t, m.Build(nil))

	var buf bytes.Buffer
	_, err := WriteModelYAML(&buf, m)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "type: dense")
	assert.Contains(t, out, "activation: sigmoid")
	assert.Contains(t, out, "name: 1.dense.weight")
	assert.False(t, strings.Contains(out, "loss:"))

	loaded, info, err := ReadModelYAML(&buf)
	require.NoError(t, err)
	assert.Empty(t, info.Loss)
	assertSameOutput(t, m, loaded)
}

func TestSaveLoad_InitAndPooling(t *testing.T) {
	build := func() *model.Sequential {
		m := model.New(
			nn.NewInput(1, 5, 5),
			nn.NewConv2D(2, 2, 2, nn.ELU{Alpha: 0.5}, nn.WithSeed(4), nn.WithInit(nn.HeUniform)),
			nn.NewAvgPool2D(2, 2),
			nn.NewFlatten(),
			nn.NewDense(3, nn.GELU{}, nn.WithSeed(5), nn.WithInit(nn.LeCun)),
			nn.NewActivation(nn.Softmax{}),
		)
		require.NoError(t, m.Compile(optim.NewRMSProp(optim.RMSPropConfig{}), loss.CategoricalCrossEntropy{}))
		return m
	}

	for _, name := range []string{"model.nn", "model.yaml"} {
		t.Run(name, func(t *testing.T) {
			m := build()
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveModel(path, m))

			loaded, _, err := LoadModel(path)
			require.NoError(t, err)
			for i := range m.Layers() {
				assert.Equal(t, m.Layer(i).Spec(), loaded.Layer(i).Spec())
			}
			assert.Equal(t, "he_uniform", loaded.Layer(1).Spec().Init)
			assert.Equal(t, nn.TypeAvgPool2D, loaded.Layer(2).Spec().Type)
			assert.Equal(t, 0.5, loaded.Layer(1).Spec().Alpha)
			assertSameOutput(t, m, loaded)
		})
	}
}
