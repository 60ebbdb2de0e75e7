package nn

import "github.com/pkg/errors"

var (
	// ErrNotBuilt is returned when Forward or Backward is called on a layer that has not been
	// built, or Backward is called before any Forward.
	ErrNotBuilt = errors.New("layer not built")

	// ErrInvalidConfig reports invalid hyperparameters or a missing collaborator.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownLayer is returned when a LayerSpec names a layer type that is not registered.
	ErrUnknownLayer = errors.New("unknown layer type")
)
