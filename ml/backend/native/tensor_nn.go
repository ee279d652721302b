// tensor_nn.go - Neuronale Netzwerk Operationen
// Enthaelt: Conv2D und ConvTranspose2D (NCHW, naive Implementierung,
// parallelisiert ueber Batch x Ausgabekanal)
package native

import (
	"fmt"
	"sync"

	"github.com/videopred/sv2p/ml"
)

// parallelFor fuehrt f(i) fuer i in [0, n) auf bis zu numThreads Workern aus
func (b *Backend) parallelFor(n int, f func(i int)) {
	workers := min(b.numThreads, n)
	if workers <= 1 {
		for i := range n {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	next := make(chan int)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				f(i)
			}
		}()
	}
	for i := range n {
		next <- i
	}
	close(next)
	wg.Wait()
}

// Conv2D faltet [B, Cin, H, W] mit Gewicht [Cout, Cin, KH, KW]
func (t *Tensor) Conv2D(ctx ml.Context, weight ml.Tensor, s0, s1, p0, p1 int) ml.Tensor {
	w := native(weight)
	if len(t.shape) != 4 || len(w.shape) != 4 || t.shape[1] != w.shape[1] {
		panic(fmt.Sprintf("native: conv2d shapes do not match: %v with weight %v", t.shape, w.shape))
	}

	batch, cin, h, wd := t.shape[0], t.shape[1], t.shape[2], t.shape[3]
	cout, kh, kw := w.shape[0], w.shape[2], w.shape[3]

	ho := (h+2*p0-kh)/s0 + 1
	wo := (wd+2*p1-kw)/s1 + 1
	if ho <= 0 || wo <= 0 {
		panic(fmt.Sprintf("native: conv2d produces empty output for input %v kernel %v", t.shape, w.shape))
	}

	out := ctx.(*Context).newTensor(batch, cout, ho, wo)

	t.b.parallelFor(batch*cout, func(i int) {
		n, oc := i/cout, i%cout
		dst := out.data[(n*cout+oc)*ho*wo:][: ho*wo : ho*wo]
		for ic := range cin {
			src := t.data[(n*cin+ic)*h*wd:][: h*wd : h*wd]
			kern := w.data[(oc*cin+ic)*kh*kw:][: kh*kw : kh*kw]
			for oy := range ho {
				for ox := range wo {
					var acc float32
					for ky := range kh {
						iy := oy*s0 - p0 + ky
						if iy < 0 || iy >= h {
							continue
						}
						for kx := range kw {
							ix := ox*s1 - p1 + kx
							if ix < 0 || ix >= wd {
								continue
							}
							acc += src[iy*wd+ix] * kern[ky*kw+kx]
						}
					}
					dst[oy*wo+ox] += acc
				}
			}
		}
	})
	return out
}

// ConvTranspose2D entfaltet [B, Cin, H, W] mit Gewicht [Cin, Cout, KH, KW]
// (transponierte Faltung, Stride s, Padding p)
func (t *Tensor) ConvTranspose2D(ctx ml.Context, weight ml.Tensor, s, p int) ml.Tensor {
	w := native(weight)
	if len(t.shape) != 4 || len(w.shape) != 4 || t.shape[1] != w.shape[0] {
		panic(fmt.Sprintf("native: conv_transpose2d shapes do not match: %v with weight %v", t.shape, w.shape))
	}

	batch, cin, h, wd := t.shape[0], t.shape[1], t.shape[2], t.shape[3]
	cout, kh, kw := w.shape[1], w.shape[2], w.shape[3]

	ho := (h-1)*s - 2*p + kh
	wo := (wd-1)*s - 2*p + kw
	if ho <= 0 || wo <= 0 {
		panic(fmt.Sprintf("native: conv_transpose2d produces empty output for input %v kernel %v", t.shape, w.shape))
	}

	out := ctx.(*Context).newTensor(batch, cout, ho, wo)

	t.b.parallelFor(batch*cout, func(i int) {
		n, oc := i/cout, i%cout
		dst := out.data[(n*cout+oc)*ho*wo:][: ho*wo : ho*wo]
		for ic := range cin {
			src := t.data[(n*cin+ic)*h*wd:][: h*wd : h*wd]
			kern := w.data[(ic*cout+oc)*kh*kw:][: kh*kw : kh*kw]
			for iy := range h {
				for ix := range wd {
					v := src[iy*wd+ix]
					if v == 0 {
						continue
					}
					for ky := range kh {
						oy := iy*s - p + ky
						if oy < 0 || oy >= ho {
							continue
						}
						for kx := range kw {
							ox := ix*s - p + kx
							if ox < 0 || ox >= wo {
								continue
							}
							dst[oy*wo+ox] += v * kern[ky*kw+kx]
						}
					}
				}
			}
		}
	})
	return out
}
