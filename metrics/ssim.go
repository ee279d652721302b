// ssim.go - Structural Similarity Index
package metrics

import (
	"math"

	"github.com/videopred/sv2p/ml"
)

const (
	windowSize  = 11
	windowSigma = 1.5

	// Stabilisierungskonstanten fuer Wertebereich 1
	ssimC1 = 0.01 * 0.01
	ssimC2 = 0.03 * 0.03
)

// gaussianWindow erstellt das normierte Gauss-Fenster [1, 1, k, k]
func gaussianWindow(ctx ml.Context) ml.Tensor {
	vals := make([]float32, windowSize*windowSize)

	var sum float64
	for i := 0; i < windowSize; i++ {
		for j := 0; j < windowSize; j++ {
			di := float64(i - windowSize/2)
			dj := float64(j - windowSize/2)
			v := math.Exp(-(di*di + dj*dj) / (2 * windowSigma * windowSigma))
			vals[i*windowSize+j] = float32(v)
			sum += v
		}
	}
	for i := range vals {
		vals[i] /= float32(sum)
	}

	return ctx.FromFloats(vals, 1, 1, windowSize, windowSize)
}

// SSIM berechnet die mittlere strukturelle Aehnlichkeit zweier Bildmengen
// [N, C, H, W] in [0, 1]
func SSIM(ctx ml.Context, x, y ml.Tensor) float32 {
	win := gaussianWindow(ctx)
	pad := windowSize / 2

	mux := depthwise(ctx, x, win, 1, pad)
	muy := depthwise(ctx, y, win, 1, pad)

	mux2 := mux.Sqr(ctx)
	muy2 := muy.Sqr(ctx)
	muxy := mux.Mul(ctx, muy)

	sigx := depthwise(ctx, x.Sqr(ctx), win, 1, pad).Sub(ctx, mux2)
	sigy := depthwise(ctx, y.Sqr(ctx), win, 1, pad).Sub(ctx, muy2)
	sigxy := depthwise(ctx, x.Mul(ctx, y), win, 1, pad).Sub(ctx, muxy)

	num := muxy.Scale(ctx, 2).AddScalar(ctx, ssimC1).Mul(ctx, sigxy.Scale(ctx, 2).AddScalar(ctx, ssimC2))
	den := mux2.Add(ctx, muy2).AddScalar(ctx, ssimC1).Mul(ctx, sigx.Add(ctx, sigy).AddScalar(ctx, ssimC2))

	return num.Div(ctx, den).Mean(ctx).Floats()[0]
}
