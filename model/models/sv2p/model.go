// Package sv2p - Stochastisches Videovorhersage-Modell
//
// Das Modell sagt eine Sequenz Frame fuer Frame voraus: jeder Schritt
// kodiert den aktuellen Frame, fusioniert Aktion, Roboterzustand und
// Latent-Code, dekodiert Kompositionsmasken und einen Bewegungskern und
// komponiert daraus den naechsten Frame. Fuer S Frames entstehen genau
// S-1 Vorhersagen.
package sv2p

import (
	"fmt"

	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/model"
	"github.com/videopred/sv2p/model/input"
)

// Model ist das Vorhersagemodell mit allen Teilnetzen
type Model struct {
	model.Base
	*Options

	obs     *ObsEncoder
	fusion  *FusionEncoder
	masks   *MaskDecoder
	kernels *KernelDecoder
	latent  *LatentInference
}

// New erstellt das Modell aus den Metadaten des Backends. Fehlende
// Gewichte werden zufaellig initialisiert, das Modell ist damit auch ohne
// Checkpoint trainierbar.
func New(b ml.Backend) (model.Model, error) {
	opts, err := newOptions(b.Config())
	if err != nil {
		return nil, err
	}

	ctx := b.NewContext()
	defer ctx.Close()

	m := &Model{
		Base:    model.NewBase(b),
		Options: opts,

		obs:     newObsEncoder(ctx, b, opts),
		fusion:  newFusionEncoder(ctx, b, opts),
		masks:   newMaskDecoder(ctx, b, opts),
		kernels: newKernelDecoder(ctx, b, opts),
	}

	if opts.stochastic {
		m.latent = newLatentInference(ctx, b, opts)
	}

	return m, nil
}

func init() {
	model.Register("sv2p", New)
}

// validate prueft die Batch-Form gegen die Modell-Konfiguration
func (m *Model) validate(batch input.Batch, opts input.Rollout) error {
	if batch.RGB == nil {
		return fmt.Errorf("sv2p: batch has no frames")
	}

	sh := batch.RGB.Shape()
	if len(sh) != 5 {
		return fmt.Errorf("sv2p: rgb must have shape [B, S, C, H, W], got %v", sh)
	}
	if sh[1] < 2 {
		return fmt.Errorf("sv2p: sequence needs at least 2 frames, got %d", sh[1])
	}
	if sh[2] != m.inChannels {
		return fmt.Errorf("sv2p: expected %d channels, got %d", m.inChannels, sh[2])
	}
	// Drei Stride-2-Stufen in Encoder und Decoder
	if sh[3]%8 != 0 || sh[4]%8 != 0 {
		return fmt.Errorf("sv2p: frame size %dx%d must be divisible by 8", sh[3], sh[4])
	}

	if m.actCond {
		if batch.Actions == nil {
			return fmt.Errorf("sv2p: model is action conditioned but batch has no actions")
		}
		if batch.Actions.Dim(1) < sh[1]-1 || batch.Actions.Dim(2) != m.actionDim {
			return fmt.Errorf("sv2p: actions must have shape [B, S-1, %d], got %v", m.actionDim, batch.Actions.Shape())
		}
	}
	if m.stateDim > 0 {
		if batch.States == nil {
			return fmt.Errorf("sv2p: model is state conditioned but batch has no states")
		}
		if batch.States.Dim(1) < sh[1]-1 || batch.States.Dim(2) != m.stateDim {
			return fmt.Errorf("sv2p: states must have shape [B, S-1, %d], got %v", m.stateDim, batch.States.Shape())
		}
	}

	if opts.Inference && !m.stochastic {
		return fmt.Errorf("sv2p: inference requires a stochastic model")
	}
	if opts.SamplingProb < 0 || opts.SamplingProb > 1 {
		return fmt.Errorf("sv2p: sampling probability %v outside [0, 1]", opts.SamplingProb)
	}

	return nil
}

// frameAt schneidet Frame i aus der Sequenz [B, S, C, H, W]
func frameAt(ctx ml.Context, seq ml.Tensor, i int) ml.Tensor {
	sh := seq.Shape()
	return seq.Slice(ctx, 1, i, i+1, 1).Reshape(ctx, sh[0], sh[2], sh[3], sh[4])
}

// vecAt schneidet Vektor i aus der Sequenz [B, S-1, D]
func vecAt(ctx ml.Context, seq ml.Tensor, i int) ml.Tensor {
	sh := seq.Shape()
	return seq.Slice(ctx, 1, i, i+1, 1).Reshape(ctx, sh[0], sh[2])
}

// stackSteps stapelt die Ausgaben aller Zeitschritte entlang Dimension 1
func stackSteps(ctx ml.Context, steps []ml.Tensor) ml.Tensor {
	return steps[0].Stack(ctx, 1, steps[1:]...)
}

// Forward fuehrt den vollstaendigen Rollout aus. Die ersten contextLen
// Schritte sehen Ground-Truth; danach mischt Scheduled Sampling im
// Training Ground-Truth und eigene Vorhersage, ausserhalb des Trainings
// laeuft das Modell autoregressiv auf den eigenen Vorhersagen.
func (m *Model) Forward(ctx ml.Context, batch input.Batch, opts input.Rollout) (*input.Output, error) {
	if err := m.validate(batch, opts); err != nil {
		return nil, err
	}

	sh := batch.RGB.Shape()
	numBatch, numSeq := sh[0], sh[1]

	var firstSrc ml.Tensor
	if m.reuseFirst {
		firstSrc = frameAt(ctx, batch.RGB, 0)
	}

	// Posterior einmal aus der vollen Sequenz ableiten, sonst Prior
	var dist ContState
	if m.stochastic {
		if opts.Inference {
			dist = m.latent.Forward(ctx, batch.RGB)
		} else {
			dist = repeatToBatch(ctx, unitState(ctx, m.latentDim), numBatch)
		}
	}

	st := &rolloutState{}

	var latent, prev ml.Tensor
	var embs, masks, frames, mus, stds []ml.Tensor

	for i := 0; i < numSeq-1; i++ {
		gt := frameAt(ctx, batch.RGB, i)

		in := gt
		switch {
		case i < m.contextLen:
		case m.Training():
			in = scheduledSampling(ctx, gt, prev, opts.SamplingProb)
		default:
			in = prev
		}

		var act, stt ml.Tensor
		if m.actCond {
			act = vecAt(ctx, batch.Actions, i)
		}
		if m.stateDim > 0 {
			stt = vecAt(ctx, batch.States, i)
		}

		if m.stochastic {
			if latent == nil {
				latent = sample(ctx, dist)
			}
			mus = append(mus, dist.Mean)
			stds = append(stds, dist.Std)
		}

		emb, msk, nxt := m.forwardSingleFrame(ctx, in, act, stt, latent, firstSrc, st)

		if m.stochastic && !retainLatent(m.timeInvar, m.Training()) {
			latent = nil
		}

		embs = append(embs, emb)
		masks = append(masks, msk)
		frames = append(frames, nxt)
		prev = nxt
	}

	out := &input.Output{
		Embeddings: stackSteps(ctx, embs),
		Masks:      stackSteps(ctx, masks),
		Frames:     stackSteps(ctx, frames),
	}
	if m.stochastic {
		out.Mu = stackSteps(ctx, mus)
		out.Std = stackSteps(ctx, stds)
	}

	return out, nil
}
