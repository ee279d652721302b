// perceptual.go - Wahrgenommene Aehnlichkeit
package metrics

import (
	"github.com/videopred/sv2p/ml"
)

// Perceptual bewertet die wahrgenommene Aehnlichkeit zweier Bildmengen
// [N, C, H, W]; 1 bedeutet identisch, kleinere Werte staerkere Abweichung
type Perceptual interface {
	Similarity(ctx ml.Context, pred, target ml.Tensor) float32
}

// MultiScaleSSIM approximiert wahrgenommene Aehnlichkeit ueber SSIM auf
// mehreren Aufloesungen: grobe Strukturfehler wiegen damit schwerer als
// pixelgenaue Abweichungen
type MultiScaleSSIM struct {
	// Scales ist die Anzahl der Aufloesungsstufen; 0 bedeutet 3
	Scales int
}

func (m MultiScaleSSIM) Similarity(ctx ml.Context, pred, target ml.Tensor) float32 {
	scales := m.Scales
	if scales <= 0 {
		scales = 3
	}

	x, y := pred, target

	var total float32
	for i := 0; i < scales; i++ {
		total += SSIM(ctx, x, y)
		if i < scales-1 {
			x = avgPool2(ctx, x)
			y = avgPool2(ctx, y)
		}
	}

	return total / float32(scales)
}

// avgPool2 halbiert die Aufloesung durch 2x2-Mittelung
func avgPool2(ctx ml.Context, x ml.Tensor) ml.Tensor {
	kern := ctx.FromFloats([]float32{0.25, 0.25, 0.25, 0.25}, 1, 1, 2, 2)
	return depthwise(ctx, x, kern, 2, 0)
}
