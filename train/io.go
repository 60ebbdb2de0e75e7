// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/serialization"
)

// ModelInfo describes a loaded model file.
type ModelInfo = serialization.Info

// Errors reported when reading model files.
var (
	ErrChecksumMismatch   = serialization.ErrChecksumMismatch
	ErrInvalidMagic       = serialization.ErrInvalidMagic
	ErrUnsupportedVersion = serialization.ErrUnsupportedVersion
	ErrUnsupportedFormat  = serialization.ErrUnsupportedFormat
)

// SaveModel writes a built model to path. The format follows the extension: ".nn" for the
// checksummed binary format, ".yaml" or ".yml" for YAML.
func SaveModel(path string, m *model.Sequential) error {
	return serialization.SaveModel(path, m)
}

// LoadModel reads a model written by SaveModel. The returned model is built but not compiled.
func LoadModel(path string) (*model.Sequential, ModelInfo, error) {
	return serialization.LoadModel(path)
}
