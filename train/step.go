// step.go - Einzelschritte fuer Training, Validierung und Test
package train

import (
	"github.com/videopred/sv2p/metrics"
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/model"
	"github.com/videopred/sv2p/model/input"
)

// Predictor buendelt die Faehigkeiten, die das Training vom Modell braucht
type Predictor interface {
	model.Model

	Loss(ctx ml.Context, batch input.Batch, out *input.Output) map[string]float32
	SetKLBeta(float32)
	Stochastic() bool
	GenIters() int
}

// TrainStep fuehrt einen Trainingsschritt aus: Scheduled Sampling mit
// p = 1, Posterior-Ableitung erst nach den ersten GenIters Schritten
// (das Modell lernt zuerst deterministisch zu generieren)
func TrainStep(ctx ml.Context, m Predictor, batch input.Batch, step int) (map[string]float32, error) {
	m.SetTraining(true)

	out, err := m.Forward(ctx, batch, input.Rollout{
		SamplingProb: 1,
		Inference:    m.Stochastic() && step > m.GenIters(),
	})
	if err != nil {
		return nil, err
	}

	return m.Loss(ctx, batch, out), nil
}

// EvalStep fuehrt einen Validierungs- oder Testschritt aus: autoregressiv
// (p = 0), ohne Posterior, mit Bildqualitaets-Metriken
func EvalStep(ctx ml.Context, m Predictor, p metrics.Perceptual, batch input.Batch) (map[string]float32, error) {
	m.SetTraining(false)

	out, err := m.Forward(ctx, batch, input.Rollout{})
	if err != nil {
		return nil, err
	}

	scores := m.Loss(ctx, batch, out)

	seq := batch.RGB.Dim(1)
	target := batch.RGB.Slice(ctx, 1, 1, seq, 1)
	for k, v := range metrics.Evaluate(ctx, p, out.Frames, target) {
		scores[k] = v
	}

	return scores, nil
}
