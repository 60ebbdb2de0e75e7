// Package loss implements the loss functions used to train a sequential model.
//
// Every loss takes a rank-1 prediction and a rank-1 target of equal length. Forward returns
// the scalar loss as a tensor of shape (1); Backward returns ∂loss/∂prediction as a new tensor
// shaped like the prediction. Each Backward is the exact derivative of the corresponding
// Forward formula, including its normalization constant and epsilon terms.
//
// Losses that take a logarithm of the prediction add Eps (DefaultEpsilon when zero) to the
// argument.
package loss

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/tensor"
)

// DefaultEpsilon is added to logarithm arguments by MSLE and the cross-entropy losses.
const DefaultEpsilon = 1e-7

// DefaultHuberDelta is the Huber threshold used when Delta is zero.
const DefaultHuberDelta = 1.0

// Loss measures the discrepancy between a prediction and a target.
type Loss interface {
	// Name returns the registry name (e.g. "mse").
	Name() string

	// Forward returns the scalar loss with shape (1).
	Forward(pred, target *tensor.Tensor) (*tensor.Tensor, error)

	// Backward returns ∂loss/∂pred, shaped like pred.
	Backward(pred, target *tensor.Tensor) (*tensor.Tensor, error)
}

// Loss names accepted by ByName.
const (
	NameMSE   = "mse"
	NameMAE   = "mae"
	NameRMSE  = "rmse"
	NameMSLE  = "msle"
	NameHuber = "huber"
	NameBCE   = "binary_crossentropy"
	NameCCE   = "categorical_crossentropy"
)

// ByName returns the loss registered under name. eps configures the logarithmic losses
// (0 selects DefaultEpsilon).
func ByName(name string, eps float64) (Loss, error) {
	switch name {
	case NameMSE:
		return MSE{}, nil
	case NameMAE:
		return MAE{}, nil
	case NameRMSE:
		return RMSE{}, nil
	case NameMSLE:
		return MSLE{Eps: eps}, nil
	case NameHuber:
		return Huber{}, nil
	case NameBCE:
		return BinaryCrossEntropy{Eps: eps}, nil
	case NameCCE:
		return CategoricalCrossEntropy{Eps: eps}, nil
	}
	return nil, errors.Wrapf(nn.ErrInvalidConfig, "unknown loss %q", name)
}

// Names returns every loss name accepted by ByName, sorted.
func Names() []string {
	names := []string{NameMSE, NameMAE, NameRMSE, NameMSLE, NameHuber, NameBCE, NameCCE}
	sort.Strings(names)
	return names
}

// operands validates the shapes and returns the values of pred and target.
func operands(name string, pred, target *tensor.Tensor) (p, r []float64, err error) {
	if pred.NumDim() != 1 || target.NumDim() != 1 {
		return nil, nil, errors.Wrapf(tensor.ErrShapeMismatch,
			"%s: prediction and target must be rank 1, got %v and %v", name, pred.Shape(), target.Shape())
	}
	if pred.Len() != target.Len() {
		return nil, nil, errors.Wrapf(tensor.ErrShapeMismatch,
			"%s: prediction length %d != target length %d", name, pred.Len(), target.Len())
	}
	return pred.Values(), target.Values(), nil
}

func gradient(g []float64) (*tensor.Tensor, error) {
	return tensor.FromSlice(g, len(g))
}

func eps(e float64) float64 {
	if e == 0 {
		return DefaultEpsilon
	}
	return e
}

// MSE is the mean squared error: L = Σ (p - r)² / n.
type MSE struct{}

// Name returns "mse".
func (MSE) Name() string { return NameMSE }

// Forward computes the mean squared error.
func (MSE) Forward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameMSE, pred, target)
	if err != nil {
		return nil, err
	}
	sum := 0.0
	for i := range p {
		d := p[i] - r[i]
		sum += d * d
	}
	return tensor.Scalar(sum / float64(len(p))), nil
}

// Backward returns 2(p - r) / n.
func (MSE) Backward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameMSE, pred, target)
	if err != nil {
		return nil, err
	}
	n := float64(len(p))
	g := make([]float64, len(p))
	for i := range p {
		g[i] = 2 * (p[i] - r[i]) / n
	}
	return gradient(g)
}

// MAE is the mean absolute error: L = Σ |p - r| / n.
type MAE struct{}

// Name returns "mae".
func (MAE) Name() string { return NameMAE }

// Forward computes the mean absolute error.
func (MAE) Forward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameMAE, pred, target)
	if err != nil {
		return nil, err
	}
	sum := 0.0
	for i := range p {
		sum += math.Abs(p[i] - r[i])
	}
	return tensor.Scalar(sum / float64(len(p))), nil
}

// Backward returns sign(p - r) / n, with sign(0) = 0 as the subgradient.
func (MAE) Backward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameMAE, pred, target)
	if err != nil {
		return nil, err
	}
	n := float64(len(p))
	g := make([]float64, len(p))
	for i := range p {
		switch d := p[i] - r[i]; {
		case d > 0:
			g[i] = 1 / n
		case d < 0:
			g[i] = -1 / n
		}
	}
	return gradient(g)
}

// RMSE is the root mean squared error: L = sqrt(Σ (p - r)² / n).
type RMSE struct{}

// Name returns "rmse".
func (RMSE) Name() string { return NameRMSE }

// Forward computes the root mean squared error.
func (RMSE) Forward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	mse, err := MSE{}.Forward(pred, target)
	if err != nil {
		return nil, errors.Wrap(err, NameRMSE)
	}
	return tensor.Scalar(math.Sqrt(mse.Item())), nil
}

// Backward returns (p - r) / (n · L). At L = 0 the gradient is zero.
func (RMSE) Backward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameRMSE, pred, target)
	if err != nil {
		return nil, err
	}
	l, _ := RMSE{}.Forward(pred, target)
	rmse := l.Item()
	g := make([]float64, len(p))
	if rmse == 0 {
		return gradient(g)
	}
	n := float64(len(p))
	for i := range p {
		g[i] = (p[i] - r[i]) / (n * rmse)
	}
	return gradient(g)
}

// MSLE is the mean squared logarithmic error: L = Σ (ln(1+p+ε) - ln(1+r+ε))² / n.
// Predictions and targets must be at least -1.
type MSLE struct {
	Eps float64
}

// Name returns "msle".
func (MSLE) Name() string { return NameMSLE }

// Forward computes the mean squared logarithmic error.
func (m MSLE) Forward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameMSLE, pred, target)
	if err != nil {
		return nil, err
	}
	e := eps(m.Eps)
	sum := 0.0
	for i := range p {
		d := math.Log1p(p[i]+e) - math.Log1p(r[i]+e)
		sum += d * d
	}
	return tensor.Scalar(sum / float64(len(p))), nil
}

// Backward returns 2(ln(1+p+ε) - ln(1+r+ε)) / (n(1+p+ε)).
func (m MSLE) Backward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameMSLE, pred, target)
	if err != nil {
		return nil, err
	}
	e := eps(m.Eps)
	n := float64(len(p))
	g := make([]float64, len(p))
	for i := range p {
		d := math.Log1p(p[i]+e) - math.Log1p(r[i]+e)
		g[i] = 2 * d / (n * (1 + p[i] + e))
	}
	return gradient(g)
}

// Huber is quadratic for |p - r| <= Delta and linear beyond, averaged over n.
type Huber struct {
	Delta float64
}

// Name returns "huber".
func (Huber) Name() string { return NameHuber }

func (h Huber) delta() float64 {
	if h.Delta <= 0 {
		return DefaultHuberDelta
	}
	return h.Delta
}

// Forward computes Σ huber(p - r) / n.
func (h Huber) Forward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameHuber, pred, target)
	if err != nil {
		return nil, err
	}
	delta := h.delta()
	sum := 0.0
	for i := range p {
		d := math.Abs(p[i] - r[i])
		if d <= delta {
			sum += 0.5 * d * d
		} else {
			sum += delta * (d - 0.5*delta)
		}
	}
	return tensor.Scalar(sum / float64(len(p))), nil
}

// Backward returns clamp(p - r, -Delta, Delta) / n.
func (h Huber) Backward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameHuber, pred, target)
	if err != nil {
		return nil, err
	}
	delta := h.delta()
	n := float64(len(p))
	g := make([]float64, len(p))
	for i := range p {
		g[i] = math.Max(-delta, math.Min(delta, p[i]-r[i])) / n
	}
	return gradient(g)
}

// BinaryCrossEntropy is L = -Σ (r ln(p+ε) + (1-r) ln(1-p+ε)) / n.
// Predictions are expected in [0, 1].
type BinaryCrossEntropy struct {
	Eps float64
}

// Name returns "binary_crossentropy".
func (BinaryCrossEntropy) Name() string { return NameBCE }

// Forward computes the binary cross-entropy.
func (b BinaryCrossEntropy) Forward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameBCE, pred, target)
	if err != nil {
		return nil, err
	}
	e := eps(b.Eps)
	sum := 0.0
	for i := range p {
		sum += r[i]*math.Log(p[i]+e) + (1-r[i])*math.Log(1-p[i]+e)
	}
	return tensor.Scalar(-sum / float64(len(p))), nil
}

// Backward returns -(r/(p+ε) - (1-r)/(1-p+ε)) / n.
func (b BinaryCrossEntropy) Backward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameBCE, pred, target)
	if err != nil {
		return nil, err
	}
	e := eps(b.Eps)
	n := float64(len(p))
	g := make([]float64, len(p))
	for i := range p {
		g[i] = -(r[i]/(p[i]+e) - (1-r[i])/(1-p[i]+e)) / n
	}
	return gradient(g)
}

// CategoricalCrossEntropy is L = -Σ r ln(p+ε) over a probability vector (not averaged).
//
// Backward is the derivative with respect to the probabilities, -r/(p+ε). Paired with a
// Softmax output it yields p - r at the logits for one-hot targets.
type CategoricalCrossEntropy struct {
	Eps float64
}

// Name returns "categorical_crossentropy".
func (CategoricalCrossEntropy) Name() string { return NameCCE }

// Forward computes the categorical cross-entropy.
func (c CategoricalCrossEntropy) Forward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameCCE, pred, target)
	if err != nil {
		return nil, err
	}
	e := eps(c.Eps)
	sum := 0.0
	for i := range p {
		sum += r[i] * math.Log(p[i]+e)
	}
	return tensor.Scalar(-sum), nil
}

// Backward returns -r/(p+ε).
func (c CategoricalCrossEntropy) Backward(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	p, r, err := operands(NameCCE, pred, target)
	if err != nil {
		return nil, err
	}
	e := eps(c.Eps)
	g := make([]float64, len(p))
	for i := range p {
		g[i] = -r[i] / (p[i] + e)
	}
	return gradient(g)
}
