// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/seqnet/internal/loss"
	"github.com/born-ml/seqnet/internal/model"
	"github.com/born-ml/seqnet/internal/nn"
)

// Options

// Option configures layer construction.
type Option = nn.Option

// WithSeed seeds the layer's weight initializer or dropout mask generator.
func WithSeed(seed int64) Option {
	return nn.WithSeed(seed)
}

// Initializer names a weight initialization scheme for Dense and Conv2D.
type Initializer = nn.Initializer

// Weight initializers.
const (
	GlorotUniform = nn.GlorotUniform
	GlorotNormal  = nn.GlorotNormal
	He            = nn.He
	HeUniform     = nn.HeUniform
	LeCun         = nn.LeCun
	Gaussian      = nn.Gaussian
)

// WithInit selects the weight initializer. The default is GlorotUniform.
//
// Example:
//
//	hidden := nn.NewDense(128, nn.ReLU{}, nn.WithInit(nn.He))
func WithInit(init Initializer) Option {
	return nn.WithInit(init)
}

// Layers

// Input declares the sample shape of a model.
type Input = nn.Input

// NewInput creates an input layer for samples of the given shape.
//
// Example:
//
//	in := nn.NewInput(1, 28, 28) // one 28x28 channel
func NewInput(dims ...int) *Input {
	return nn.NewInput(dims...)
}

// Dense represents a fully connected layer with a fused activation.
type Dense = nn.Dense

// NewDense creates a fully connected layer, Glorot-initialized unless WithInit says otherwise.
//
// Example:
//
//	hidden := nn.NewDense(128, nn.ReLU{}, nn.WithSeed(42))
func NewDense(units int, act Activation, opts ...Option) *Dense {
	return nn.NewDense(units, act, opts...)
}

// Conv2D represents a valid, stride-1 2D convolution over (C, H, W) input.
type Conv2D = nn.Conv2D

// NewConv2D creates a convolution with filters kernels of size kernelH x kernelW.
//
// Example:
//
//	conv := nn.NewConv2D(32, 3, 3, nn.ReLU{}) // 32 filters, 3x3 kernel
func NewConv2D(filters, kernelH, kernelW int, act Activation, opts ...Option) *Conv2D {
	return nn.NewConv2D(filters, kernelH, kernelW, act, opts...)
}

// MaxPool2D represents a 2D max pooling layer with stride equal to the pool size.
type MaxPool2D = nn.MaxPool2D

// NewMaxPool2D creates a max pooling layer.
//
// Example:
//
//	pool := nn.NewMaxPool2D(2, 2)
func NewMaxPool2D(poolH, poolW int) *MaxPool2D {
	return nn.NewMaxPool2D(poolH, poolW)
}

// AvgPool2D represents a 2D average pooling layer with stride equal to the pool size.
type AvgPool2D = nn.AvgPool2D

// NewAvgPool2D creates an average pooling layer.
func NewAvgPool2D(poolH, poolW int) *AvgPool2D {
	return nn.NewAvgPool2D(poolH, poolW)
}

// ActivationLayer applies an activation as a standalone layer.
type ActivationLayer = nn.ActivationLayer

// NewActivation creates a standalone activation layer.
func NewActivation(act Activation) *ActivationLayer {
	return nn.NewActivation(act)
}

// Dropout zeroes a random fraction of its input during training.
type Dropout = nn.Dropout

// NewDropout creates a dropout layer. rate must be in [0, 1).
func NewDropout(rate float64, opts ...Option) *Dropout {
	return nn.NewDropout(rate, opts...)
}

// Flatten reshapes its input to rank 1.
type Flatten = nn.Flatten

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return nn.NewFlatten()
}

// Activations

// Activation is an elementwise (or, for Softmax, vector) nonlinearity with its derivative.
type Activation = nn.Activation

// Linear is the identity activation.
type Linear = nn.Linear

// ReLU is max(0, x).
type ReLU = nn.ReLU

// LeakyReLU is x for x > 0 and Alpha*x otherwise.
type LeakyReLU = nn.LeakyReLU

// Sigmoid is 1 / (1 + e^-x).
type Sigmoid = nn.Sigmoid

// Tanh is the hyperbolic tangent.
type Tanh = nn.Tanh

// Softmax normalizes a vector into a probability distribution.
type Softmax = nn.Softmax

// ELU is x for x > 0 and Alpha(e^x - 1) otherwise.
type ELU = nn.ELU

// SELU is the self-normalizing scaled ELU.
type SELU = nn.SELU

// GELU is the tanh approximation of the Gaussian error linear unit.
type GELU = nn.GELU

// Swish is x·sigmoid(x).
type Swish = nn.Swish

// SoftPlus is ln(1 + e^x).
type SoftPlus = nn.SoftPlus

// Atan is the arctangent.
type Atan = nn.Atan

// ActivationByName creates the activation registered under name.
// alpha is used by "leaky_relu" and "elu" only.
func ActivationByName(name string, alpha float64) (Activation, error) {
	return nn.ActivationByName(name, alpha)
}

// Containers

// Sequential is an ordered stack of layers compiled with an optimizer and a loss.
type Sequential = model.Sequential

// NewSequential creates a sequential model.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewInput(2),
//	    nn.NewDense(2, nn.Sigmoid{}, nn.WithSeed(1)),
//	    nn.NewDense(1, nn.Sigmoid{}, nn.WithSeed(2)),
//	)
//	err := model.Compile(optim.NewSGD(optim.SGDConfig{LR: 0.5, Momentum: 0.9}), nn.MSELoss{})
func NewSequential(layers ...Layer) *Sequential {
	return model.New(layers...)
}

// Loss functions

// Loss is the contract of every loss function: a scalar value and its derivative with respect
// to the prediction.
type Loss = loss.Loss

// MSELoss is the mean squared error.
type MSELoss = loss.MSE

// MAELoss is the mean absolute error.
type MAELoss = loss.MAE

// RMSELoss is the root mean squared error.
type RMSELoss = loss.RMSE

// MSLELoss is the mean squared logarithmic error.
type MSLELoss = loss.MSLE

// HuberLoss is quadratic near zero and linear beyond Delta.
type HuberLoss = loss.Huber

// BCELoss is the binary cross-entropy.
type BCELoss = loss.BinaryCrossEntropy

// CrossEntropyLoss is the categorical cross-entropy over a probability vector.
type CrossEntropyLoss = loss.CategoricalCrossEntropy

// LossByName creates the loss registered under name. eps is the log epsilon of the
// cross-entropy losses (0 selects the default).
func LossByName(name string, eps float64) (Loss, error) {
	return loss.ByName(name, eps)
}
