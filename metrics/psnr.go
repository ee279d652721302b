// psnr.go - Peak Signal-to-Noise Ratio
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/videopred/sv2p/ml"
)

// maxPSNR begrenzt den Wert fuer identische Bilder
const maxPSNR = 100

// PSNR berechnet das mittlere Spitzen-Signal-Rausch-Verhaeltnis in dB
// ueber alle Bilder [N, C, H, W] bei Wertebereich 1
func PSNR(ctx ml.Context, x, y ml.Tensor) float32 {
	mse := x.Sub(ctx, y).Sqr(ctx).Mean(ctx, 1, 2, 3)

	vals := mse.Floats()
	scores := make([]float64, len(vals))
	for i, m := range vals {
		if m <= 0 {
			scores[i] = maxPSNR
			continue
		}
		scores[i] = min(-10*math.Log10(float64(m)), maxPSNR)
	}

	return float32(stat.Mean(scores, nil))
}
