// Package nn - Wiederverwendbare Netzwerk-Bausteine
//
// Layer beziehen ihre Gewichte per Namen aus dem Backend; fehlt ein Gewicht
// (untrainiertes Modell), wird es aus der geseedeten Zufallsquelle des
// Backends initialisiert, damit das Modell ohne Checkpoint lauffaehig und
// reproduzierbar ist.
package nn

import (
	"log/slog"
	"math"

	"github.com/videopred/sv2p/ml"
)

// weight laedt einen benannten Tensor oder initialisiert ihn normalverteilt
// mit Standardabweichung scale
func weight(ctx ml.Context, b ml.Backend, name string, scale float64, shape ...int) ml.Tensor {
	if t := b.Get(name); t != nil {
		return t
	}

	slog.Debug("initializing weight", "name", name, "shape", shape)
	t := ctx.RandNormal(shape...).Scale(ctx, scale)
	b.Set(name, t)
	return t
}

// zeros laedt einen benannten Tensor oder initialisiert ihn mit Nullen
func zeros(ctx ml.Context, b ml.Backend, name string, shape ...int) ml.Tensor {
	if t := b.Get(name); t != nil {
		return t
	}

	slog.Debug("initializing weight", "name", name, "shape", shape)
	t := ctx.Zeros(ml.DTypeF32, shape...)
	b.Set(name, t)
	return t
}

func fanInScale(fanIn int) float64 {
	return 1 / math.Sqrt(float64(fanIn))
}
