// linear.go - Vollverbundene Schicht
package nn

import (
	"github.com/videopred/sv2p/ml"
)

// Linear ist eine vollverbundene Schicht; Weight hat die Form [in, out]
type Linear struct {
	Weight ml.Tensor
	Bias   ml.Tensor
}

// NewLinear erstellt eine Linear-Schicht mit Gewichten aus dem Backend
func NewLinear(ctx ml.Context, b ml.Backend, name string, in, out int) *Linear {
	return &Linear{
		Weight: weight(ctx, b, name+".weight", fanInScale(in), in, out),
		Bias:   zeros(ctx, b, name+".bias", out),
	}
}

// Forward berechnet x*W + b fuer x der Form [.., in]
func (m *Linear) Forward(ctx ml.Context, x ml.Tensor) ml.Tensor {
	return x.Mulmat(ctx, m.Weight).Add(ctx, m.Bias)
}
