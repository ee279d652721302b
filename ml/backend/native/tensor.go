// tensor.go - Tensor-Struktur und Basis-Methoden
// Enthaelt: Tensor struct, Shape, Floats, DType sowie interne Index-Helfer
package native

import (
	"fmt"
	"log/slog"

	"github.com/videopred/sv2p/ml"
)

// Tensor ist ein dichter, row-major float32 Tensor
type Tensor struct {
	b     *Backend
	shape []int
	data  []float32
}

// LogValue gibt den Tensor als slog-Wert zurueck
func (t *Tensor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("shape", t.shape),
		slog.Int("elements", len(t.data)),
	)
}

// Dim gibt die Groesse einer Dimension zurueck
func (t *Tensor) Dim(n int) int {
	return t.shape[n]
}

// Shape gibt die Form des Tensors zurueck
func (t *Tensor) Shape() []int {
	shape := make([]int, len(t.shape))
	copy(shape, t.shape)
	return shape
}

// DType gibt den Datentyp zurueck (im Speicher immer F32)
func (t *Tensor) DType() ml.DType {
	return ml.DTypeF32
}

// Floats gibt eine Kopie der Tensor-Daten zurueck
func (t *Tensor) Floats() []float32 {
	s := make([]float32, len(t.data))
	copy(s, t.data)
	return s
}

// Duplicate erstellt eine unabhaengige Kopie
func (t *Tensor) Duplicate(ctx ml.Context) ml.Tensor {
	out := ctx.(*Context).newTensor(t.shape...)
	copy(out.data, t.data)
	return out
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// strides berechnet row-major Strides
func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}

func native(t ml.Tensor) *Tensor {
	nt, ok := t.(*Tensor)
	if !ok {
		panic(fmt.Sprintf("native: foreign tensor type %T", t))
	}
	return nt
}
