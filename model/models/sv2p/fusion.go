// fusion.go - Fusions-Encoder fuer Aktion, Zustand und Latent-Code
//
// Kachelt die Vektoren ueber die tiefste Feature-Karte, fusioniert per
// 1x1-Faltung und fuehrt den rekurrenten Zustand durch eine ConvLSTM-Zelle
// (1 Slot).
package sv2p

import (
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/nn"
)

// FusionEncoder fusioniert das tiefste Embedding mit Aktion/Zustand/Latent
type FusionEncoder struct {
	fuse *nn.Conv2D
	lstm *nn.ConvLSTM
}

func newFusionEncoder(ctx ml.Context, b ml.Backend, o *Options) *FusionEncoder {
	in := o.channels[3]
	if o.actCond {
		in += o.actionDim
	}
	in += o.stateDim
	if o.stochastic {
		in += o.latentDim
	}

	return &FusionEncoder{
		fuse: nn.NewConv2D(ctx, b, "act_encoder.fuse", in, o.channels[3], 1, 1, 0),
		lstm: nn.NewConvLSTM(ctx, b, "act_encoder.lstm", o.channels[3], o.channels[3], o.lstmKernel),
	}
}

// tile kachelt einen Vektor [B, D] auf [B, D, H, W]
func tile(ctx ml.Context, v ml.Tensor, height, width int) ml.Tensor {
	batch, dim := v.Dim(0), v.Dim(1)
	return v.Reshape(ctx, batch, dim, 1, 1).Repeat(ctx, 2, height).Repeat(ctx, 3, width)
}

// Forward fusioniert emb [B, Cd, h, w] mit act, stt und latent (jeweils
// [B, ·] oder nil); state darf nil sein (frisch)
func (e *FusionEncoder) Forward(ctx ml.Context, emb, act, stt, latent ml.Tensor, state *nn.ConvLSTMState) (ml.Tensor, *nn.ConvLSTMState) {
	height, width := emb.Dim(2), emb.Dim(3)

	x := emb
	for _, v := range []ml.Tensor{act, stt, latent} {
		if v != nil {
			x = x.Concat(ctx, tile(ctx, v, height, width), 1)
		}
	}

	x = e.fuse.Forward(ctx, x).RELU(ctx)
	return e.lstm.Forward(ctx, x, state)
}
