// tensor_unary.go - Elementweise Funktionen und Aktivierungen
// Enthaelt: Softmax, Sigmoid, Tanh, RELU, Softplus, Exp, Log, Abs, Sqr, Sqrt, Clamp
package native

import (
	"math"

	"github.com/videopred/sv2p/ml"
)

func (t *Tensor) unaryOp(ctx ml.Context, f func(v float32) float32) ml.Tensor {
	out := ctx.(*Context).newTensor(t.shape...)
	for i, v := range t.data {
		out.data[i] = f(v)
	}
	return out
}

// Softmax normalisiert entlang der Dimension dim (numerisch stabil)
func (t *Tensor) Softmax(ctx ml.Context, dim int) ml.Tensor {
	if dim < 0 || dim >= len(t.shape) {
		panic("native: softmax dimension out of range")
	}

	out := ctx.(*Context).newTensor(t.shape...)
	st := strides(t.shape)
	n := t.shape[dim]

	// outer iteriert ueber alle Positionen mit Index 0 in dim
	outer := numElements(t.shape) / n
	for o := range outer {
		// Basis-Offset: o auf alle Dimensionen ausser dim verteilen
		rem, base := o, 0
		for d := range t.shape {
			if d == dim {
				continue
			}
			// Anzahl der verbleibenden Kombinationen nach Dimension d
			div := 1
			for d2 := d + 1; d2 < len(t.shape); d2++ {
				if d2 != dim {
					div *= t.shape[d2]
				}
			}
			id := rem / div
			rem %= div
			base += id * st[d]
		}

		maxv := float32(math.Inf(-1))
		for i := range n {
			if v := t.data[base+i*st[dim]]; v > maxv {
				maxv = v
			}
		}

		var sum float32
		for i := range n {
			e := float32(math.Exp(float64(t.data[base+i*st[dim]] - maxv)))
			out.data[base+i*st[dim]] = e
			sum += e
		}
		for i := range n {
			out.data[base+i*st[dim]] /= sum
		}
	}
	return out
}

// Sigmoid wendet die logistische Funktion an
func (t *Tensor) Sigmoid(ctx ml.Context) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		return float32(1 / (1 + math.Exp(-float64(v))))
	})
}

// Tanh wendet den Tangens Hyperbolicus an
func (t *Tensor) Tanh(ctx ml.Context) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		return float32(math.Tanh(float64(v)))
	})
}

// RELU wendet max(0, x) an
func (t *Tensor) RELU(ctx ml.Context) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// Softplus wendet log(1+exp(x)) an (numerisch stabil)
func (t *Tensor) Softplus(ctx ml.Context) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		if v > 20 {
			return v
		}
		return float32(math.Log1p(math.Exp(float64(v))))
	})
}

// Exp wendet die Exponentialfunktion an
func (t *Tensor) Exp(ctx ml.Context) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		return float32(math.Exp(float64(v)))
	})
}

// Log wendet den natuerlichen Logarithmus an
func (t *Tensor) Log(ctx ml.Context) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		return float32(math.Log(float64(v)))
	})
}

// Abs wendet den Absolutbetrag an
func (t *Tensor) Abs(ctx ml.Context) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		return float32(math.Abs(float64(v)))
	})
}

// Sqr quadriert elementweise
func (t *Tensor) Sqr(ctx ml.Context) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		return v * v
	})
}

// Sqrt zieht elementweise die Wurzel
func (t *Tensor) Sqrt(ctx ml.Context) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		return float32(math.Sqrt(float64(v)))
	})
}

// Clamp begrenzt alle Werte auf [min, max]
func (t *Tensor) Clamp(ctx ml.Context, min, max float32) ml.Tensor {
	return t.unaryOp(ctx, func(v float32) float32 {
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	})
}
