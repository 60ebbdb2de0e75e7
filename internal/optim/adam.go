package optim

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/seqnet/internal/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam combines ideas from RMSprop and momentum:
//   - Maintains exponential moving averages of gradients (first moment)
//   - Maintains exponential moving averages of squared gradients (second moment)
//   - Applies bias correction to compensate for initialization at zero
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
//
// Two variants share this type. AMSGrad divides by the running maximum of v_t instead of v_t
// (Reddi et al., 2018). Nesterov (Nadam, Dozat 2016) replaces m_hat in the update with the
// look-ahead β1*m_hat + (1-β1)*gradient/(1-beta1^t).
//
// Example:
//
//	optimizer := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	ams    bool
	nadam  bool
	t      int         // Timestep for bias correction
	m      [][]float64 // First moment estimates, aligned with params
	v      [][]float64 // Second moment estimates, aligned with params
	vmax   [][]float64 // AMSGrad running maximum of v, aligned with params
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)

	AMSGrad  bool // Use the running maximum of the second moment
	Nesterov bool // Use the Nadam look-ahead first moment
}

// NewAdam creates a new unbound Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
		ams:   config.AMSGrad,
		nadam: config.Nesterov,
	}
}

// Name returns "adam", "amsgrad" or "nadam".
func (a *Adam) Name() string {
	switch {
	case a.ams:
		return NameAMSGrad
	case a.nadam:
		return NameNadam
	}
	return NameAdam
}

// Build binds the parameters and resets the moments and the timestep.
func (a *Adam) Build(params []*nn.Parameter) error {
	if a.lr <= 0 || a.eps <= 0 {
		return errors.Wrapf(nn.ErrInvalidConfig, "adam: lr and eps must be positive, got %g and %g", a.lr, a.eps)
	}
	if a.beta1 < 0 || a.beta1 >= 1 || a.beta2 < 0 || a.beta2 >= 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "adam: betas must be in [0, 1), got %g and %g", a.beta1, a.beta2)
	}
	if a.ams && a.nadam {
		return errors.Wrap(nn.ErrInvalidConfig, "adam: amsgrad and nesterov cannot be combined")
	}
	if err := checkParams(a.Name(), params); err != nil {
		return err
	}

	a.params = params
	a.t = 0
	a.m = make([][]float64, len(params))
	a.v = make([][]float64, len(params))
	a.vmax = nil
	if a.ams {
		a.vmax = make([][]float64, len(params))
	}
	for i, p := range params {
		a.m[i] = make([]float64, p.Value().Len())
		a.v[i] = make([]float64, p.Value().Len())
		if a.ams {
			a.vmax[i] = make([]float64, p.Value().Len())
		}
	}
	return nil
}

// Step performs a single optimization step using Adam algorithm.
//
// Applies Adam update to all parameters:
//  1. Update biased first moment estimate
//  2. Update biased second moment estimate
//  3. Compute bias-corrected moment estimates
//  4. Update parameters
func (a *Adam) Step() {
	a.t++

	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for i, p := range a.params {
		value := p.Value().Data()
		grad := p.Grad().Data()
		m, v := a.m[i], a.v[i]

		for j, g := range grad {
			m[j] = a.beta1*m[j] + (1.0-a.beta1)*g
			v[j] = a.beta2*v[j] + (1.0-a.beta2)*g*g

			mHat := m[j] / biasCorrection1
			vHat := v[j] / biasCorrection2
			if a.ams {
				a.vmax[i][j] = math.Max(a.vmax[i][j], v[j])
				vHat = a.vmax[i][j] / biasCorrection2
			}
			if a.nadam {
				mHat = a.beta1*mHat + (1.0-a.beta1)*g/biasCorrection1
			}
			value[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Betas returns the moment decay rates.
func (a *Adam) Betas() [2]float64 {
	return [2]float64{a.beta1, a.beta2}
}

// Eps returns the denominator epsilon.
func (a *Adam) Eps() float64 {
	return a.eps
}

// Timestep returns the number of steps taken since Build.
func (a *Adam) Timestep() int {
	return a.t
}
