package nn

import (
	"sort"

	"github.com/pkg/errors"
)

// Layer type names.
const (
	TypeInput      = "input"
	TypeDense      = "dense"
	TypeActivation = "activation"
	TypeDropout    = "dropout"
	TypeFlatten    = "flatten"
	TypeConv2D     = "conv2d"
	TypeMaxPool2D  = "maxpool2d"
	TypeAvgPool2D  = "avgpool2d"
)

// LayerSpec is the serializable description of a layer's hyperparameters.
// Fields irrelevant to a layer type are left zero.
type LayerSpec struct {
	Type       string  `yaml:"type"`
	Shape      []int   `yaml:"shape,omitempty"`
	Units      int     `yaml:"units,omitempty"`
	Activation string  `yaml:"activation,omitempty"`
	Alpha      float64 `yaml:"alpha,omitempty"`
	Rate       float64 `yaml:"rate,omitempty"`
	Seed       int64   `yaml:"seed,omitempty"`
	Init       string  `yaml:"init,omitempty"`
	Filters    int     `yaml:"filters,omitempty"`
	KernelH    int     `yaml:"kernel_h,omitempty"`
	KernelW    int     `yaml:"kernel_w,omitempty"`
	PoolH      int     `yaml:"pool_h,omitempty"`
	PoolW      int     `yaml:"pool_w,omitempty"`
}

// Factory creates an unbuilt layer from its spec.
type Factory func(spec LayerSpec) (Layer, error)

var registry = map[string]Factory{
	TypeInput: func(s LayerSpec) (Layer, error) {
		return NewInput(s.Shape...), nil
	},
	TypeDense: func(s LayerSpec) (Layer, error) {
		act, err := ActivationByName(s.Activation, s.Alpha)
		if err != nil {
			return nil, err
		}
		return NewDense(s.Units, act, WithSeed(s.Seed), WithInit(Initializer(s.Init))), nil
	},
	TypeActivation: func(s LayerSpec) (Layer, error) {
		act, err := ActivationByName(s.Activation, s.Alpha)
		if err != nil {
			return nil, err
		}
		return NewActivation(act), nil
	},
	TypeDropout: func(s LayerSpec) (Layer, error) {
		return NewDropout(s.Rate, WithSeed(s.Seed)), nil
	},
	TypeFlatten: func(LayerSpec) (Layer, error) {
		return NewFlatten(), nil
	},
	TypeConv2D: func(s LayerSpec) (Layer, error) {
		act, err := ActivationByName(s.Activation, s.Alpha)
		if err != nil {
			return nil, err
		}
		return NewConv2D(s.Filters, s.KernelH, s.KernelW, act, WithSeed(s.Seed), WithInit(Initializer(s.Init))), nil
	},
	TypeMaxPool2D: func(s LayerSpec) (Layer, error) {
		return NewMaxPool2D(s.PoolH, s.PoolW), nil
	},
	TypeAvgPool2D: func(s LayerSpec) (Layer, error) {
		return NewAvgPool2D(s.PoolH, s.PoolW), nil
	},
}

// Register adds a layer factory under name, replacing any previous one.
func Register(name string, f Factory) {
	registry[name] = f
}

// Registered returns the registered layer type names in sorted order.
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromSpec creates an unbuilt layer from spec.
func FromSpec(spec LayerSpec) (Layer, error) {
	f, ok := registry[spec.Type]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLayer, "%q", spec.Type)
	}
	return f(spec)
}
