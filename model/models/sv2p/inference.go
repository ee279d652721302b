// inference.go - Posterior-Netz fuer die Latent-Variable
//
// Kodiert jeden Frame der vollstaendigen Sequenz durch einen kleinen
// Faltungs-Turm, mittelt ueber Raum und Zeit und leitet daraus die
// Parameter der Posterior-Verteilung ab. Das Netz sieht die gesamte
// Sequenz und darf daher nur laufen, wenn Ground-Truth fuer alle
// Zeitschritte vorliegt.
package sv2p

import (
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/nn"
)

// LatentInference leitet die Posterior-Verteilung aus der Sequenz ab
type LatentInference struct {
	convs [3]*nn.Conv2D
	mean  *nn.Linear
	std   *nn.Linear
}

func newLatentInference(ctx ml.Context, b ml.Backend, o *Options) *LatentInference {
	ch := o.channels
	return &LatentInference{
		convs: [3]*nn.Conv2D{
			nn.NewConv2D(ctx, b, "inference_net.conv0", o.inChannels, ch[0], 3, 2, 1),
			nn.NewConv2D(ctx, b, "inference_net.conv1", ch[0], ch[1], 3, 2, 1),
			nn.NewConv2D(ctx, b, "inference_net.conv2", ch[1], ch[2], 3, 2, 1),
		},
		mean: nn.NewLinear(ctx, b, "inference_net.mean", ch[2], o.latentDim),
		std:  nn.NewLinear(ctx, b, "inference_net.std", ch[2], o.latentDim),
	}
}

// Forward leitet die Posterior-Parameter [B, latentDim] aus der Sequenz
// rgb der Form [B, S, C, H, W] ab
func (e *LatentInference) Forward(ctx ml.Context, rgb ml.Tensor) ContState {
	sh := rgb.Shape()
	batch, seq := sh[0], sh[1]

	var feats ml.Tensor
	for i := 0; i < seq; i++ {
		x := rgb.Slice(ctx, 1, i, i+1, 1).Reshape(ctx, batch, sh[2], sh[3], sh[4])
		for _, c := range e.convs {
			x = c.Forward(ctx, x).RELU(ctx)
		}

		f := x.Mean(ctx, 2, 3).Reshape(ctx, batch, 1, x.Dim(1))
		if feats == nil {
			feats = f
		} else {
			feats = feats.Concat(ctx, f, 1)
		}
	}

	feat := feats.Mean(ctx, 1)

	return ContState{
		Mean: e.mean.Forward(ctx, feat),
		// Softplus haelt die Streuung strikt positiv
		Std: e.std.Forward(ctx, feat).Softplus(ctx).AddScalar(ctx, 1e-4),
	}
}
