// Package model provides the sequential model container.
//
// A Sequential owns an ordered stack of layers. Compile binds a loss and an optimizer and
// builds every layer, chaining each layer's output shape into the next layer's input. The
// forward pass runs the layers front to back; the backward pass is driven by the training
// engine, which walks Layers() in reverse.
package model

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/loss"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/optim"
	"github.com/born-ml/seqnet/internal/parallel"
	"github.com/born-ml/seqnet/internal/tensor"
)

// Sequential is a container that chains layers together.
//
// Each layer's output becomes the next layer's input. The first layer must know its own
// input shape, which is what nn.Input is for:
//
//	m := model.New(
//	    nn.NewInput(2),
//	    nn.NewDense(2, nn.Sigmoid{}),
//	    nn.NewDense(1, nn.Sigmoid{}),
//	)
//	if err := m.Compile(optim.NewSGD(optim.SGDConfig{LR: 0.5}), loss.MSE{}); err != nil { ... }
//
//	y, err := m.Forward(x)
//
// A Sequential is not safe for concurrent use. Clone it per goroutine.
type Sequential struct {
	layers   []nn.Layer
	opt      optim.Optimizer
	loss     loss.Loss
	built    bool
	compiled bool
	training bool
}

// New creates an unbuilt Sequential from layers, in evaluation order.
func New(layers ...nn.Layer) *Sequential {
	return &Sequential{layers: layers}
}

// Add appends a layer. It must be called before Build or Compile.
func (m *Sequential) Add(layer nn.Layer) {
	m.layers = append(m.layers, layer)
	m.built = false
	m.compiled = false
}

// Build builds every layer in order. in is handed to the first layer; nil lets a
// self-describing first layer (nn.Input) use its declared shape.
func (m *Sequential) Build(in tensor.Shape) error {
	if len(m.layers) == 0 {
		return errors.Wrap(nn.ErrInvalidConfig, "model: no layers")
	}
	shape := in
	for i, l := range m.layers {
		if l == nil {
			return errors.Wrapf(nn.ErrInvalidConfig, "model: layer %d is nil", i)
		}
		if err := l.Build(shape); err != nil {
			return errors.Wrapf(err, "model: build layer %d (%s)", i, l.Name())
		}
		shape = l.OutputShape()
	}
	m.built = true
	m.SetTraining(m.training)
	return nil
}

// Compile binds the optimizer and the loss, builds the layers if needed and binds the
// optimizer to the model's parameters.
//
// A model that is already built (for instance after loading) keeps its weights.
func (m *Sequential) Compile(opt optim.Optimizer, l loss.Loss) error {
	if opt == nil {
		return errors.Wrap(nn.ErrInvalidConfig, "model: optimizer is nil")
	}
	if l == nil {
		return errors.Wrap(nn.ErrInvalidConfig, "model: loss is nil")
	}
	if !m.built {
		if err := m.Build(nil); err != nil {
			return err
		}
	}
	if err := opt.Build(m.Parameters()); err != nil {
		return errors.Wrap(err, "model: bind optimizer")
	}

	m.opt = opt
	m.loss = l
	m.compiled = true
	return nil
}

// Forward feeds x through every layer and returns the last layer's output.
// The result is a buffer owned by the last layer and is overwritten by the next call.
func (m *Sequential) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if !m.built {
		return nil, errors.Wrap(nn.ErrNotBuilt, "model: forward")
	}
	out := x
	for i, l := range m.layers {
		var err error
		if out, err = l.Forward(out); err != nil {
			return nil, errors.Wrapf(err, "model: layer %d (%s)", i, l.Name())
		}
	}
	return out, nil
}

// Backward propagates grad from the output back to the input, walking the layers in
// reverse order. Parameter gradients accumulate.
func (m *Sequential) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if !m.built {
		return nil, errors.Wrap(nn.ErrNotBuilt, "model: backward")
	}
	for i := len(m.layers) - 1; i >= 0; i-- {
		var err error
		if grad, err = m.layers[i].Backward(grad); err != nil {
			return nil, errors.Wrapf(err, "model: layer %d (%s)", i, m.layers[i].Name())
		}
	}
	return grad, nil
}

// ZeroGrad resets the accumulated gradient of every layer.
func (m *Sequential) ZeroGrad() {
	for _, l := range m.layers {
		l.ZeroGrad()
	}
}

// SetTraining switches every layer between training and inference behaviour.
func (m *Sequential) SetTraining(training bool) {
	m.training = training
	for _, l := range m.layers {
		l.SetTraining(training)
	}
}

// Training reports whether the model is in training mode.
func (m *Sequential) Training() bool { return m.training }

// SetParallel hands cfg to every layer that runs its kernels on a worker pool.
func (m *Sequential) SetParallel(cfg parallel.Config) {
	for _, l := range m.layers {
		if p, ok := l.(nn.Parallelizable); ok {
			p.SetParallel(cfg)
		}
	}
}

// Layers returns the layers in evaluation order. The slice must not be modified.
func (m *Sequential) Layers() []nn.Layer { return m.layers }

// Layer returns the layer at index i.
//
// Panics if i is out of range.
func (m *Sequential) Layer(i int) nn.Layer {
	if i < 0 || i >= len(m.layers) {
		panic(errors.Wrapf(tensor.ErrIndexOutOfRange, "model: layer %d of %d", i, len(m.layers)))
	}
	return m.layers[i]
}

// NumLayers returns the number of layers.
func (m *Sequential) NumLayers() int { return len(m.layers) }

// Parameters returns the trainable parameters of every layer, in layer order.
func (m *Sequential) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for _, l := range m.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// NumParams returns the total number of trainable scalars.
func (m *Sequential) NumParams() int {
	n := 0
	for _, l := range m.layers {
		n += l.NumParams()
	}
	return n
}

// InputShape returns the first layer's input shape (nil before Build).
func (m *Sequential) InputShape() tensor.Shape {
	if !m.built {
		return nil
	}
	return m.layers[0].InputShape()
}

// OutputShape returns the last layer's output shape (nil before Build).
func (m *Sequential) OutputShape() tensor.Shape {
	if !m.built {
		return nil
	}
	return m.layers[len(m.layers)-1].OutputShape()
}

// Loss returns the bound loss (nil before Compile).
func (m *Sequential) Loss() loss.Loss { return m.loss }

// Optimizer returns the bound optimizer (nil before Compile).
func (m *Sequential) Optimizer() optim.Optimizer { return m.opt }

// Built reports whether every layer is built.
func (m *Sequential) Built() bool { return m.built }

// Compiled reports whether Compile succeeded.
func (m *Sequential) Compiled() bool { return m.compiled }

// Clone returns a deep copy of the layers and their parameters. The clone keeps the loss
// but has no optimizer, so it is built but not compiled. It is meant for evaluation on
// another goroutine.
func (m *Sequential) Clone() *Sequential {
	c := &Sequential{
		layers:   make([]nn.Layer, len(m.layers)),
		loss:     m.loss,
		built:    m.built,
		training: m.training,
	}
	for i, l := range m.layers {
		c.layers[i] = l.Clone()
	}
	return c
}

// Summary writes a table of the layers with their output shapes and parameter counts.
func (m *Sequential) Summary(w io.Writer) error {
	rule := strings.Repeat("_", 65)
	var b strings.Builder
	fmt.Fprintln(&b, "Model: Sequential")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%-25s %-20s %-10s\n", "Layer (type)", "Output Shape", "Param #")
	fmt.Fprintln(&b, strings.Repeat("=", 65))
	for i, l := range m.layers {
		out := "?"
		if l.Built() {
			out = l.OutputShape().String()
		}
		fmt.Fprintf(&b, "%-25s %-20s %-10d\n", fmt.Sprintf("%s_%d", l.Name(), i), out, l.NumParams())
	}
	fmt.Fprintln(&b, strings.Repeat("=", 65))
	fmt.Fprintf(&b, "Total params: %d\n", m.NumParams())
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(w, b.String())
	return err
}
