// encoder.go - Rekurrenter Beobachtungs-Encoder
//
// Vier Skalen, jede aus einer Stride-Faltung und einer ConvLSTM-Zelle.
// Der Encoder gibt die Embeddings aller Skalen zurueck; die tiefste wird
// vom Fusions-Encoder ersetzt, bevor der Masken-Decoder sie konsumiert.
package sv2p

import (
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/nn"
)

// obsState ist der rekurrente Zustand des Beobachtungs-Encoders (4 Slots)
type obsState struct {
	scales [4]*nn.ConvLSTMState
}

// ObsEncoder kodiert einen Frame in ein Multi-Skalen-Embedding
type ObsEncoder struct {
	convs [4]*nn.Conv2D
	lstms [4]*nn.ConvLSTM
}

func newObsEncoder(ctx ml.Context, b ml.Backend, o *Options) *ObsEncoder {
	ch := o.channels
	return &ObsEncoder{
		convs: [4]*nn.Conv2D{
			nn.NewConv2D(ctx, b, "obs_encoder.conv0", o.inChannels, ch[0], 5, 2, 2),
			nn.NewConv2D(ctx, b, "obs_encoder.conv1", ch[0], ch[1], 3, 2, 1),
			nn.NewConv2D(ctx, b, "obs_encoder.conv2", ch[1], ch[2], 3, 2, 1),
			nn.NewConv2D(ctx, b, "obs_encoder.conv3", ch[2], ch[3], 3, 1, 1),
		},
		lstms: [4]*nn.ConvLSTM{
			nn.NewConvLSTM(ctx, b, "obs_encoder.lstm0", ch[0], ch[0], o.lstmKernel),
			nn.NewConvLSTM(ctx, b, "obs_encoder.lstm1", ch[1], ch[1], o.lstmKernel),
			nn.NewConvLSTM(ctx, b, "obs_encoder.lstm2", ch[2], ch[2], o.lstmKernel),
			nn.NewConvLSTM(ctx, b, "obs_encoder.lstm3", ch[3], ch[3], o.lstmKernel),
		},
	}
}

// Forward kodiert rgb der Form [B, C, H, W]; state darf nil sein (frisch).
// Gibt die Embeddings aller vier Skalen und den neuen Zustand zurueck.
func (e *ObsEncoder) Forward(ctx ml.Context, rgb ml.Tensor, state *obsState) ([]ml.Tensor, *obsState) {
	if state == nil {
		state = &obsState{}
	}

	next := &obsState{}
	embs := make([]ml.Tensor, 4)

	x := rgb
	for i := range e.convs {
		x = e.convs[i].Forward(ctx, x).RELU(ctx)
		x, next.scales[i] = e.lstms[i].Forward(ctx, x, state.scales[i])
		embs[i] = x
	}

	return embs, next
}
