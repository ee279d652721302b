// tensor_reduce.go - Reduktionen
// Enthaelt: Sum und Mean ueber beliebige Dimensionen
package native

import (
	"fmt"
	"slices"

	"github.com/videopred/sv2p/ml"
)

// reduce summiert ueber dims; reduzierte Dimensionen werden entfernt
func (t *Tensor) reduce(ctx ml.Context, dims []int) (*Tensor, int) {
	if len(dims) == 0 {
		dims = make([]int, len(t.shape))
		for d := range dims {
			dims[d] = d
		}
	}

	reduced := make([]bool, len(t.shape))
	count := 1
	for _, d := range dims {
		if d < 0 || d >= len(t.shape) || reduced[d] {
			panic(fmt.Sprintf("native: invalid reduce dims %v for shape %v", dims, t.shape))
		}
		reduced[d] = true
		count *= t.shape[d]
	}

	var outShape []int
	for d, size := range t.shape {
		if !reduced[d] {
			outShape = append(outShape, size)
		}
	}

	out := ctx.(*Context).newTensor(outShape...)
	inStrides := strides(t.shape)
	outStrides := strides(outShape)

	for i, v := range t.data {
		rem, off, od := i, 0, 0
		for d := range t.shape {
			id := rem / inStrides[d]
			rem %= inStrides[d]
			if !reduced[d] {
				off += id * outStrides[od]
				od++
			}
		}
		out.data[off] += v
	}
	return out, count
}

// Sum summiert ueber die gegebenen Dimensionen (alle, wenn keine angegeben)
func (t *Tensor) Sum(ctx ml.Context, dims ...int) ml.Tensor {
	out, _ := t.reduce(ctx, slices.Clone(dims))
	return out
}

// Mean mittelt ueber die gegebenen Dimensionen (alle, wenn keine angegeben)
func (t *Tensor) Mean(ctx ml.Context, dims ...int) ml.Tensor {
	out, count := t.reduce(ctx, slices.Clone(dims))
	for i := range out.data {
		out.data[i] /= float32(count)
	}
	return out
}
