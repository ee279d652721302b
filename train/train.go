// Package train - Trainings-Harness fuer Videovorhersage-Modelle
//
// Der Trainer faehrt Epochen ueber einen Trainings-Loader, validiert am
// Epochenende und schreibt am Ende einen Checkpoint. Jeder Lauf traegt
// eine eindeutige Run-ID, unter der alle Skalare gemeldet werden.
package train

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/videopred/sv2p/dataset"
	"github.com/videopred/sv2p/metrics"
	"github.com/videopred/sv2p/ml"
)

// Config steuert einen Trainingslauf
type Config struct {
	Epochs int
	Seed   int64

	// KLTarget ist das End-KL-Gewicht; KLAnnealSteps die Schrittzahl der
	// linearen Anhebung nach den ersten GenIters Schritten
	KLTarget      float32
	KLAnnealSteps int

	// CheckpointPath ist der Zielpfad des Checkpoints; leer deaktiviert
	// das Speichern
	CheckpointPath string
}

// Trainer fuehrt einen Trainingslauf ueber ein Modell aus
type Trainer struct {
	ID string

	m    Predictor
	opt  Optimizer
	sink ScalarSink
	cfg  Config
}

// New erstellt einen Trainer; opt darf nil sein (reiner Forward-Lauf,
// z.B. zum Vermessen eines Modells), sink nil bedeutet SlogSink
func New(m Predictor, opt Optimizer, sink ScalarSink, cfg Config) *Trainer {
	if sink == nil {
		sink = SlogSink{}
	}

	return &Trainer{
		ID:   uuid.NewString(),
		m:    m,
		opt:  opt,
		sink: sink,
		cfg:  cfg,
	}
}

// Run faehrt alle Epochen; val darf nil sein
func (t *Trainer) Run(ctx context.Context, train, val *dataset.Loader) error {
	mlctx := t.m.Backend().NewContext()
	defer mlctx.Close()

	anneal := KLAnnealer{
		Target: t.cfg.KLTarget,
		Delay:  t.m.GenIters(),
		Steps:  t.cfg.KLAnnealSteps,
	}

	step := 0
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		start := time.Now()
		train.Shuffle(t.cfg.Seed + int64(epoch))

		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			batch, err := train.Next(ctx, mlctx)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}

			if t.m.Stochastic() {
				t.m.SetKLBeta(anneal.Beta(step))
			}

			losses, err := TrainStep(mlctx, t.m, batch, step)
			if err != nil {
				return err
			}

			if t.opt != nil {
				if err := t.opt.Step(mlctx, losses); err != nil {
					return err
				}
			}

			for _, k := range sortedKeys(losses) {
				t.sink.Scalar(t.ID, step, k, losses[k])
			}
			step++
		}

		slog.Info("epoch done", "run", t.ID, "epoch", epoch, "steps", step, "elapsed", time.Since(start))

		if val != nil {
			scores, err := Evaluate(ctx, mlctx, t.m, val)
			if err != nil {
				return err
			}
			for _, k := range sortedKeys(scores) {
				t.sink.Scalar(t.ID, step, "val_"+k, scores[k])
			}
		}
	}

	if t.cfg.CheckpointPath != "" {
		return Checkpoint(t.m.Backend(), t.cfg.CheckpointPath)
	}
	return nil
}

// Evaluate faehrt einen vollen Durchlauf ueber einen Loader und mittelt
// Verluste und Metriken
func Evaluate(ctx context.Context, mlctx ml.Context, m Predictor, l *dataset.Loader) (map[string]float32, error) {
	l.Reset()

	var all []map[string]float32
	for {
		batch, err := l.Next(ctx, mlctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		scores, err := EvalStep(mlctx, m, metrics.MultiScaleSSIM{}, batch)
		if err != nil {
			return nil, err
		}
		all = append(all, scores)
	}

	return meanScores(all), nil
}

// Checkpoint speichert die Gewichte eines Backends, sofern es das kann
func Checkpoint(b ml.Backend, path string) error {
	saver, ok := b.(interface{ Save(string) error })
	if !ok {
		return errors.New("train: backend does not support checkpoints")
	}

	slog.Info("writing checkpoint", "path", path)
	return saver.Save(path)
}
