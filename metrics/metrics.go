// Package metrics - Bildqualitaets-Metriken fuer Videovorhersagen
//
// Alle Metriken arbeiten auf Frames in [-1, 1]; Sequenzen [B, S, C, H, W]
// werden ueber Batch und Zeit zu [B*S, C, H, W] geflacht und auf [0, 1]
// reskaliert, bevor gerechnet wird. Alle Werte sind "hoeher ist besser".
package metrics

import (
	"github.com/videopred/sv2p/ml"
)

// Evaluate berechnet alle Metriken zwischen Vorhersage und Ground-Truth,
// beide der Form [B, S, C, H, W]
func Evaluate(ctx ml.Context, p Perceptual, pred, target ml.Tensor) map[string]float32 {
	x := rescale(ctx, flattenSeq(ctx, pred))
	y := rescale(ctx, flattenSeq(ctx, target))

	return map[string]float32{
		"ssim":   SSIM(ctx, x, y),
		"psnr":   PSNR(ctx, x, y),
		"percep": p.Similarity(ctx, x, y),
	}
}

// flattenSeq flacht [B, S, C, H, W] zu [B*S, C, H, W]
func flattenSeq(ctx ml.Context, t ml.Tensor) ml.Tensor {
	sh := t.Shape()
	return t.Reshape(ctx, sh[0]*sh[1], sh[2], sh[3], sh[4])
}

// rescale bildet [-1, 1] auf [0, 1] ab und schneidet Ausreisser ab
func rescale(ctx ml.Context, t ml.Tensor) ml.Tensor {
	return t.AddScalar(ctx, 1).Scale(ctx, 0.5).Clamp(ctx, 0, 1)
}

// depthwise faltet jeden Kanal von x [N, C, H, W] einzeln mit kern
// [1, 1, k, k], indem die Kanaele in die Batch-Dimension gehoben werden
func depthwise(ctx ml.Context, x, kern ml.Tensor, stride, pad int) ml.Tensor {
	n, c, h, w := x.Dim(0), x.Dim(1), x.Dim(2), x.Dim(3)

	y := x.Reshape(ctx, n*c, 1, h, w).Conv2D(ctx, kern, stride, stride, pad, pad)
	return y.Reshape(ctx, n, c, y.Dim(2), y.Dim(3))
}
