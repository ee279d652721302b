// losses.go - Verlustfunktionen des Rollouts
package sv2p

import (
	"github.com/videopred/sv2p/metrics"
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/model/input"
)

// Loss berechnet die Verluste eines Durchlaufs: Rekonstruktion der Frames
// 2..S gegen die Vorhersagen (Pixel-Anteil plus DSSIM-Anteil) und
// KL-Divergenz der Posterior-Verteilung gegen den Standard-Prior. Der
// KL-Anteil ist bei deterministischen Modellen exakt 0.
func (m *Model) Loss(ctx ml.Context, batch input.Batch, out *input.Output) map[string]float32 {
	sh := batch.RGB.Shape()
	target := batch.RGB.Slice(ctx, 1, 1, sh[1], 1)

	diff := out.Frames.Sub(ctx, target)

	var rec float32
	if m.alphaL == 1 {
		rec = diff.Abs(ctx).Mean(ctx).Floats()[0]
	} else {
		rec = diff.Sqr(ctx).Mean(ctx).Floats()[0]
	}

	loss2d := m.alphaRcr * (rec + dssim(ctx, out.Frames, target))

	var kl float32
	if m.stochastic && out.Mu != nil {
		q := ContState{Mean: out.Mu, Std: out.Std}
		p := repeatToBatchSeq(ctx, unitState(ctx, m.latentDim), sh[0], out.Mu.Dim(1))
		kl = klDivergence(ctx, q, p)
	}

	return map[string]float32{
		"loss_total":    loss2d + m.klBeta*kl,
		"loss2d_rgbrcs": loss2d,
		"loss_kl":       kl,
	}
}

// dssim misst die strukturelle Unaehnlichkeit zweier Sequenzen
// [B, S, C, H, W], ueber Batch und Zeit geflacht und auf [0, 1] skaliert
func dssim(ctx ml.Context, pred, target ml.Tensor) float32 {
	flat := func(t ml.Tensor) ml.Tensor {
		sh := t.Shape()
		img := t.Reshape(ctx, sh[0]*sh[1], sh[2], sh[3], sh[4])
		return img.AddScalar(ctx, 1).Scale(ctx, 0.5).Clamp(ctx, 0, 1)
	}

	return (1 - metrics.SSIM(ctx, flat(pred), flat(target))) / 2
}

// SetKLBeta setzt das KL-Gewicht; das Training hebt es schrittweise an
func (m *Model) SetKLBeta(beta float32) {
	m.klBeta = beta
}

// KLBeta gibt das aktuelle KL-Gewicht zurueck
func (m *Model) KLBeta() float32 {
	return m.klBeta
}
