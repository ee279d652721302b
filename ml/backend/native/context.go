// context.go - Compute-Kontext des nativen Backends
//
// Das Backend rechnet eager: Operationen werden sofort ausgefuehrt,
// Forward/Compute sind daher No-Ops und existieren nur fuer die
// Schnittstellen-Kompatibilitaet mit Graph-Backends.
package native

import (
	"github.com/videopred/sv2p/ml"
)

// Context implementiert ml.Context
type Context struct {
	b *Backend
}

func (c *Context) newTensor(shape ...int) *Tensor {
	return &Tensor{b: c.b, shape: shape, data: make([]float32, numElements(shape))}
}

// Empty erstellt einen uninitialisierten Tensor
func (c *Context) Empty(dtype ml.DType, shape ...int) ml.Tensor {
	if dtype != ml.DTypeF32 {
		panic("native: only F32 tensors are supported in memory")
	}
	return c.newTensor(shape...)
}

// Zeros erstellt einen Null-Tensor
func (c *Context) Zeros(dtype ml.DType, shape ...int) ml.Tensor {
	return c.Empty(dtype, shape...)
}

// Ones erstellt einen Eins-Tensor
func (c *Context) Ones(dtype ml.DType, shape ...int) ml.Tensor {
	t := c.Empty(dtype, shape...).(*Tensor)
	for i := range t.data {
		t.data[i] = 1
	}
	return t
}

// FromFloats erstellt einen Tensor aus einem float32-Slice
func (c *Context) FromFloats(s []float32, shape ...int) ml.Tensor {
	if len(s) != numElements(shape) {
		panic("native: data length does not match shape")
	}
	t := c.newTensor(shape...)
	copy(t.data, s)
	return t
}

// Arange erstellt einen 1D-Tensor mit Werten in [start, stop)
func (c *Context) Arange(start, stop, step float32, dtype ml.DType) ml.Tensor {
	if step <= 0 {
		panic("native: arange step must be positive")
	}
	var s []float32
	for v := start; v < stop; v += step {
		s = append(s, v)
	}
	return c.FromFloats(s, len(s))
}

// RandNormal erstellt einen Tensor mit standard-normalverteilten Werten
// aus der geseedeten Zufallsquelle des Backends
func (c *Context) RandNormal(shape ...int) ml.Tensor {
	t := c.newTensor(shape...)
	for i := range t.data {
		t.data[i] = c.b.normFloat32()
	}
	return t
}

// Forward ist beim eager Backend ein No-Op
func (c *Context) Forward(...ml.Tensor) ml.Context {
	return c
}

// Compute ist beim eager Backend ein No-Op
func (c *Context) Compute(...ml.Tensor) {}

// Close gibt den Kontext frei
func (c *Context) Close() {}
