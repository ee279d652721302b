// tensor_matrix.go - Matrix-Multiplikation
// Enthaelt: Mulmat (Batch-faehig ueber fuehrende Dimensionen)
package native

import (
	"fmt"

	"github.com/videopred/sv2p/ml"
)

// Mulmat multipliziert [.., M, K] mit [K, N] zu [.., M, N]
func (t *Tensor) Mulmat(ctx ml.Context, t2 ml.Tensor) ml.Tensor {
	w := native(t2)
	if len(t.shape) < 2 || len(w.shape) != 2 {
		panic(fmt.Sprintf("native: mulmat requires [.., M, K] x [K, N], got %v x %v", t.shape, w.shape))
	}

	m := t.shape[len(t.shape)-2]
	k := t.shape[len(t.shape)-1]
	if w.shape[0] != k {
		panic(fmt.Sprintf("native: mulmat inner dimensions do not match: %v x %v", t.shape, w.shape))
	}
	n := w.shape[1]

	outShape := append(t.Shape()[:len(t.shape)-1], n)
	out := ctx.(*Context).newTensor(outShape...)

	batch := numElements(t.shape) / (m * k)
	for b := range batch {
		a := t.data[b*m*k : (b+1)*m*k]
		o := out.data[b*m*n : (b+1)*m*n]
		for i := range m {
			for l := range k {
				av := a[i*k+l]
				if av == 0 {
					continue
				}
				row := w.data[l*n : (l+1)*n]
				for j := range n {
					o[i*n+j] += av * row[j]
				}
			}
		}
	}
	return out
}
