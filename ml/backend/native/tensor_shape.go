// tensor_shape.go - Form-Operationen
// Enthaelt: Reshape, Permute, Repeat, Concat, Stack, Chunk, Slice
package native

import (
	"fmt"
	"slices"

	"github.com/videopred/sv2p/ml"
)

// Reshape aendert die Form bei gleicher Elementanzahl
func (t *Tensor) Reshape(ctx ml.Context, shape ...int) ml.Tensor {
	if numElements(shape) != len(t.data) {
		panic(fmt.Sprintf("native: cannot reshape %v to %v", t.shape, shape))
	}
	out := ctx.(*Context).newTensor(shape...)
	copy(out.data, t.data)
	return out
}

// Permute ordnet die Dimensionen um; order ist eine Permutation der Achsen
func (t *Tensor) Permute(ctx ml.Context, order ...int) ml.Tensor {
	if len(order) != len(t.shape) {
		panic(fmt.Sprintf("native: permute order %v does not match shape %v", order, t.shape))
	}

	outShape := make([]int, len(order))
	for i, o := range order {
		if o < 0 || o >= len(t.shape) {
			panic(fmt.Sprintf("native: invalid permute order %v", order))
		}
		outShape[i] = t.shape[o]
	}

	out := ctx.(*Context).newTensor(outShape...)
	inStrides := strides(t.shape)
	outStrides := strides(outShape)

	for i := range out.data {
		rem, off := i, 0
		for d := range outShape {
			id := rem / outStrides[d]
			rem %= outStrides[d]
			off += id * inStrides[order[d]]
		}
		out.data[i] = t.data[off]
	}
	return out
}

// Repeat wiederholt den Tensor n-mal entlang der Dimension dim
func (t *Tensor) Repeat(ctx ml.Context, dim, n int) ml.Tensor {
	if dim < 0 || dim >= len(t.shape) || n < 1 {
		panic(fmt.Sprintf("native: invalid repeat dim=%d n=%d for shape %v", dim, n, t.shape))
	}

	outShape := t.Shape()
	outShape[dim] *= n
	out := ctx.(*Context).newTensor(outShape...)

	inner := numElements(t.shape[dim:])
	outer := len(t.data) / inner
	for o := range outer {
		src := t.data[o*inner : (o+1)*inner]
		for r := range n {
			copy(out.data[(o*n+r)*inner:], src)
		}
	}
	return out
}

// Concat haengt t2 entlang der Dimension dim an
func (t *Tensor) Concat(ctx ml.Context, t2 ml.Tensor, dim int) ml.Tensor {
	u := native(t2)
	if len(t.shape) != len(u.shape) || dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("native: cannot concat %v and %v along dim %d", t.shape, u.shape, dim))
	}
	for d := range t.shape {
		if d != dim && t.shape[d] != u.shape[d] {
			panic(fmt.Sprintf("native: cannot concat %v and %v along dim %d", t.shape, u.shape, dim))
		}
	}

	outShape := t.Shape()
	outShape[dim] += u.shape[dim]
	out := ctx.(*Context).newTensor(outShape...)

	innerT := numElements(t.shape[dim:])
	innerU := numElements(u.shape[dim:])
	outer := numElements(t.shape[:dim])
	for o := range outer {
		copy(out.data[o*(innerT+innerU):], t.data[o*innerT:(o+1)*innerT])
		copy(out.data[o*(innerT+innerU)+innerT:], u.data[o*innerU:(o+1)*innerU])
	}
	return out
}

// Stack stapelt den Tensor und s entlang einer neuen Dimension an Position dim
func (t *Tensor) Stack(ctx ml.Context, dim int, s ...ml.Tensor) ml.Tensor {
	if dim < 0 || dim > len(t.shape) {
		panic(fmt.Sprintf("native: invalid stack dim %d for shape %v", dim, t.shape))
	}

	unsqueezed := slices.Insert(t.Shape(), dim, 1)
	out := t.Reshape(ctx, unsqueezed...)
	for _, other := range s {
		u := native(other)
		if !slices.Equal(t.shape, u.shape) {
			panic(fmt.Sprintf("native: cannot stack %v with %v", t.shape, u.shape))
		}
		out = out.Concat(ctx, u.Reshape(ctx, unsqueezed...), dim)
	}
	return out
}

// Chunk zerteilt den Tensor entlang dim in Stuecke der Laenge size
func (t *Tensor) Chunk(ctx ml.Context, dim int, size int) []ml.Tensor {
	if dim < 0 || dim >= len(t.shape) || size < 1 || t.shape[dim]%size != 0 {
		panic(fmt.Sprintf("native: cannot chunk shape %v along dim %d into size %d", t.shape, dim, size))
	}

	chunks := make([]ml.Tensor, 0, t.shape[dim]/size)
	for low := 0; low < t.shape[dim]; low += size {
		chunks = append(chunks, t.Slice(ctx, dim, low, low+size, 1))
	}
	return chunks
}

// Slice schneidet [low, high) mit Schrittweite step entlang dim aus
func (t *Tensor) Slice(ctx ml.Context, dim, low, high, step int) ml.Tensor {
	if dim < 0 || dim >= len(t.shape) || low < 0 || high > t.shape[dim] || low > high || step < 1 {
		panic(fmt.Sprintf("native: invalid slice [%d:%d:%d] of shape %v along dim %d", low, high, step, t.shape, dim))
	}

	count := (high - low + step - 1) / step
	outShape := t.Shape()
	outShape[dim] = count
	out := ctx.(*Context).newTensor(outShape...)

	inner := numElements(t.shape[dim+1:])
	outer := numElements(t.shape[:dim])
	for o := range outer {
		for i := range count {
			src := t.data[(o*t.shape[dim]+low+i*step)*inner:]
			copy(out.data[(o*count+i)*inner:(o*count+i+1)*inner], src[:inner])
		}
	}
	return out
}
