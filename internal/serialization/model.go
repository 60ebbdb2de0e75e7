package serialization

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

// Info describes a loaded model file.
type Info struct {
	Version int
	ModelID uuid.UUID
	Loss    string // name of the loss the model was compiled with, empty if none
}

// NewDocument captures the architecture and parameters of a built model under a fresh
// model ID.
func NewDocument(m *model.Sequential) (*Document, error) {
	if m == nil || !m.Built() {
		return nil, errors.Wrap(nn.ErrNotBuilt, "serialize model")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.Wrap(err, "model id")
	}

	doc := &Document{
		FormatVersion: FormatVersion,
		ModelID:       id.String(),
		InputShape:    []int(m.InputShape()),
	}
	if l := m.Loss(); l != nil {
		doc.Loss = l.Name()
	}
	for i, l := range m.Layers() {
		doc.Layers = append(doc.Layers, l.Spec())
		for _, p := range l.Parameters() {
			doc.Parameters = append(doc.Parameters, TensorData{
				Name:  parameterName(i, p),
				Shape: []int(p.Value().Shape()),
				Data:  p.Value().Values(),
			})
		}
	}
	return doc, nil
}

// parameterName prefixes a parameter with its layer index (e.g. "1.dense.weight").
func parameterName(layer int, p *nn.Parameter) string {
	return fmt.Sprintf("%d.%s", layer, p.Name())
}

// Model rebuilds the layers from their specs and loads the stored parameters.
// The model is built but not compiled.
func (doc *Document) Model() (*model.Sequential, error) {
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	layers := make([]nn.Layer, len(doc.Layers))
	for i, s := range doc.Layers {
		l, err := nn.FromSpec(s)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		layers[i] = l
	}
	m := model.New(layers...)

	var in tensor.Shape
	if len(doc.InputShape) > 0 {
		in = tensor.Shape(doc.InputShape)
	}
	if err := m.Build(in); err != nil {
		return nil, errors.Wrap(err, "rebuild model")
	}

	k := 0
	for i, l := range m.Layers() {
		for _, p := range l.Parameters() {
			if k >= len(doc.Parameters) {
				return nil, errors.Wrapf(ErrParameterMismatch, "missing %s", parameterName(i, p))
			}
			stored := doc.Parameters[k]
			name := parameterName(i, p)
			if stored.Name != name || !p.Value().Shape().Equal(tensor.Shape(stored.Shape)) {
				return nil, errors.Wrapf(ErrParameterMismatch,
					"stored %s %v, layer expects %s %v", stored.Name, stored.Shape, name, p.Value().Shape())
			}
			copy(p.Value().Data(), stored.Data)
			k++
		}
	}
	if k != len(doc.Parameters) {
		return nil, errors.Wrapf(ErrParameterMismatch, "%d stored parameters, layers hold %d", len(doc.Parameters), k)
	}
	return m, nil
}

// Info returns the descriptive part of the document.
func (doc *Document) Info() Info {
	id, _ := uuid.Parse(doc.ModelID)
	return Info{Version: doc.FormatVersion, ModelID: id, Loss: doc.Loss}
}

// WriteModel writes m to w in the binary .nn format and returns the new model ID.
func WriteModel(w io.Writer, m *model.Sequential) (uuid.UUID, error) {
	doc, err := NewDocument(m)
	if err != nil {
		return uuid.Nil, err
	}
	data, err := encodeBinary(doc)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := w.Write(data); err != nil {
		return uuid.Nil, errors.Wrap(err, "write model")
	}
	return doc.Info().ModelID, nil
}

// ReadModel reads a binary .nn model from r.
func ReadModel(r io.Reader) (*model.Sequential, Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Info{}, errors.Wrap(err, "read model")
	}
	doc, err := decodeBinary(data)
	if err != nil {
		return nil, Info{}, err
	}
	return load(doc)
}

// WriteModelYAML writes m to w as YAML and returns the new model ID.
func WriteModelYAML(w io.Writer, m *model.Sequential) (uuid.UUID, error) {
	doc, err := NewDocument(m)
	if err != nil {
		return uuid.Nil, err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return uuid.Nil, errors.Wrap(err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return uuid.Nil, errors.Wrap(err, "encode yaml")
	}
	return doc.Info().ModelID, nil
}

// ReadModelYAML reads a YAML model from r.
func ReadModelYAML(r io.Reader) (*model.Sequential, Info, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, Info{}, errors.Wrap(err, "decode yaml")
	}
	return load(&doc)
}

func load(doc *Document) (*model.Sequential, Info, error) {
	m, err := doc.Model()
	if err != nil {
		return nil, Info{}, err
	}
	return m, doc.Info(), nil
}

// SaveModel writes m to path in the format selected by the extension (.nn, .yaml, .yml).
func SaveModel(path string, m *model.Sequential) error {
	var buf bytes.Buffer
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtBinary:
		_, err = WriteModel(&buf, m)
	case ExtYAML, ExtYML:
		_, err = WriteModelYAML(&buf, m)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	if err != nil {
		return err
	}

	//nolint:gosec // G306: model files are not secret
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "save model")
	}
	return nil
}

// LoadModel reads a model file written by SaveModel.
func LoadModel(path string) (*model.Sequential, Info, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ExtBinary && ext != ExtYAML && ext != ExtYML {
		return nil, Info{}, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}

	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, errors.Wrap(err, "load model")
	}
	defer f.Close()

	if ext == ExtBinary {
		return ReadModel(f)
	}
	return ReadModelYAML(f)
}
