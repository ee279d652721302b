// decoder.go - Masken-Decoder und CDNA-Kern-Decoder
//
// Der Masken-Decoder spiegelt den Beobachtungs-Encoder: zwei rekurrente
// Zellen (2 Slots) und drei transponierte Faltungen mit Skip-Verbindungen
// zu den flacheren Encoder-Skalen. Der Kern-Decoder leitet pro Beispiel
// einen normierten Faltungskern ab und verschiebt damit den aktuellen
// Frame (CDNA).
package sv2p

import (
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/nn"
)

// maskState ist der rekurrente Zustand des Masken-Decoders (2 Slots)
type maskState struct {
	a *nn.ConvLSTMState
	b *nn.ConvLSTMState
}

// MaskDecoder dekodiert Kompositionsmasken aus dem fusionierten Embedding
type MaskDecoder struct {
	lstmA   *nn.ConvLSTM
	deconv1 *nn.ConvTranspose2D
	lstmB   *nn.ConvLSTM
	deconv2 *nn.ConvTranspose2D
	deconv3 *nn.ConvTranspose2D
	proj    *nn.Conv2D
}

func newMaskDecoder(ctx ml.Context, b ml.Backend, o *Options) *MaskDecoder {
	ch := o.channels
	return &MaskDecoder{
		lstmA:   nn.NewConvLSTM(ctx, b, "msk_decoder.lstm0", ch[3], ch[2], o.lstmKernel),
		deconv1: nn.NewConvTranspose2D(ctx, b, "msk_decoder.deconv0", ch[2], ch[1], 4, 2, 1),
		lstmB:   nn.NewConvLSTM(ctx, b, "msk_decoder.lstm1", 2*ch[1], ch[1], o.lstmKernel),
		deconv2: nn.NewConvTranspose2D(ctx, b, "msk_decoder.deconv1", ch[1], ch[0], 4, 2, 1),
		deconv3: nn.NewConvTranspose2D(ctx, b, "msk_decoder.deconv2", 2*ch[0], ch[0], 4, 2, 1),
		proj:    nn.NewConv2D(ctx, b, "msk_decoder.proj", ch[0], o.numMasks, 1, 1, 0),
	}
}

// Forward dekodiert Masken [B, numMasks, H, W] aus dem fusionierten
// Embedding und den Skip-Embeddings des Encoders; state darf nil sein.
// Die Masken sind ueber die Kanal-Dimension softmax-normiert und summieren
// sich pixelweise zu 1.
func (d *MaskDecoder) Forward(ctx ml.Context, fused ml.Tensor, embs []ml.Tensor, state *maskState) (ml.Tensor, *maskState) {
	if state == nil {
		state = &maskState{}
	}

	next := &maskState{}

	x, nextA := d.lstmA.Forward(ctx, fused, state.a)
	next.a = nextA

	x = d.deconv1.Forward(ctx, x).RELU(ctx)
	x = x.Concat(ctx, embs[1], 1)

	x, nextB := d.lstmB.Forward(ctx, x, state.b)
	next.b = nextB

	x = d.deconv2.Forward(ctx, x).RELU(ctx)
	x = x.Concat(ctx, embs[0], 1)

	x = d.deconv3.Forward(ctx, x).RELU(ctx)

	return d.proj.Forward(ctx, x).Softmax(ctx, 1), next
}

// KernelDecoder leitet pro Beispiel einen Bewegungskern ab (CDNA)
type KernelDecoder struct {
	fc     *nn.Linear
	kernel int
}

func newKernelDecoder(ctx ml.Context, b ml.Backend, o *Options) *KernelDecoder {
	return &KernelDecoder{
		fc:     nn.NewLinear(ctx, b, "knl_decoder.fc", o.channels[3], o.cdnaKernel*o.cdnaKernel),
		kernel: o.cdnaKernel,
	}
}

// Forward transformiert rgb [B, C, H, W] mit je einem aus dem fusionierten
// Embedding abgeleiteten Kern pro Beispiel. Die Kerne sind softmax-normiert,
// die Transformation erhaelt damit die Helligkeit.
func (d *KernelDecoder) Forward(ctx ml.Context, fused, rgb ml.Tensor) ml.Tensor {
	batch, chans := rgb.Dim(0), rgb.Dim(1)
	height, width := rgb.Dim(2), rgb.Dim(3)

	feat := fused.Mean(ctx, 2, 3)
	kernels := d.fc.Forward(ctx, feat).Softmax(ctx, 1)

	var out ml.Tensor
	for i := 0; i < batch; i++ {
		kern := kernels.Slice(ctx, 0, i, i+1, 1).Reshape(ctx, 1, 1, d.kernel, d.kernel)

		// Ein Kern auf alle Kanaele: Kanaele in die Batch-Dimension heben
		frame := rgb.Slice(ctx, 0, i, i+1, 1).Reshape(ctx, chans, 1, height, width)
		tfm := frame.Conv2D(ctx, kern, 1, 1, d.kernel/2, d.kernel/2)
		tfm = tfm.Reshape(ctx, 1, chans, height, width)

		if out == nil {
			out = tfm
		} else {
			out = out.Concat(ctx, tfm, 0)
		}
	}

	return out
}
