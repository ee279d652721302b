// tensor_arithmetic.go - Basis-Arithmetik-Operationen fuer Tensoren
// Enthaelt: Add, Sub, Mul, Div, Scale, AddScalar und Broadcasting-Helfer
package native

import (
	"fmt"

	"github.com/videopred/sv2p/ml"
)

// broadcastShape berechnet die Ergebnis-Form zweier Operanden.
// Dimensionen werden rechtsbuendig ausgerichtet; jede Dimension muss
// uebereinstimmen oder 1 sein.
func broadcastShape(a, b []int) []int {
	n := max(len(a), len(b))
	out := make([]int, n)
	for i := range n {
		da, db := 1, 1
		if j := i - (n - len(a)); j >= 0 {
			da = a[j]
		}
		if j := i - (n - len(b)); j >= 0 {
			db = b[j]
		}

		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			panic(fmt.Sprintf("native: cannot broadcast shapes %v and %v", a, b))
		}
	}
	return out
}

// broadcastStrides gibt Strides fuer shape relativ zur Ergebnis-Form zurueck;
// Broadcast-Dimensionen erhalten Stride 0
func broadcastStrides(shape, out []int) []int {
	s := strides(shape)
	bs := make([]int, len(out))
	for i := range out {
		j := i - (len(out) - len(shape))
		if j >= 0 && shape[j] == out[i] {
			bs[i] = s[j]
		}
	}
	return bs
}

func (t *Tensor) binaryOp(ctx ml.Context, t2 ml.Tensor, f func(a, b float32) float32) ml.Tensor {
	u := native(t2)
	outShape := broadcastShape(t.shape, u.shape)

	out := ctx.(*Context).newTensor(outShape...)
	outStrides := strides(outShape)
	sa := broadcastStrides(t.shape, outShape)
	sb := broadcastStrides(u.shape, outShape)

	for i := range out.data {
		rem, offA, offB := i, 0, 0
		for d := range outShape {
			id := rem / outStrides[d]
			rem %= outStrides[d]
			offA += id * sa[d]
			offB += id * sb[d]
		}
		out.data[i] = f(t.data[offA], u.data[offB])
	}
	return out
}

// Add addiert zwei Tensoren elementweise (mit Broadcasting)
func (t *Tensor) Add(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.binaryOp(ctx, t2, func(a, b float32) float32 { return a + b })
}

// Sub subtrahiert zwei Tensoren elementweise (mit Broadcasting)
func (t *Tensor) Sub(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.binaryOp(ctx, t2, func(a, b float32) float32 { return a - b })
}

// Mul multipliziert zwei Tensoren elementweise (mit Broadcasting)
func (t *Tensor) Mul(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.binaryOp(ctx, t2, func(a, b float32) float32 { return a * b })
}

// Div dividiert zwei Tensoren elementweise (mit Broadcasting)
func (t *Tensor) Div(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	return t.binaryOp(ctx, t2, func(a, b float32) float32 { return a / b })
}

// Scale skaliert den Tensor mit einem Skalarwert
func (t *Tensor) Scale(ctx ml.Context, s float64) ml.Tensor {
	out := ctx.(*Context).newTensor(t.shape...)
	for i, v := range t.data {
		out.data[i] = v * float32(s)
	}
	return out
}

// AddScalar addiert einen Skalarwert elementweise
func (t *Tensor) AddScalar(ctx ml.Context, s float64) ml.Tensor {
	out := ctx.(*Context).newTensor(t.shape...)
	for i, v := range t.data {
		out.data[i] = v + float32(s)
	}
	return out
}
