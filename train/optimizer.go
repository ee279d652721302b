// optimizer.go - Optimierer-Schnittstelle
package train

import (
	"fmt"

	"github.com/videopred/sv2p/ml"
)

// Optimizer aktualisiert die Modellgewichte nach einem Trainingsschritt.
// Die Gradientenberechnung liegt beim Optimierer selbst; der Trainer ruft
// nur Step nach jedem Batch auf.
type Optimizer interface {
	Step(ctx ml.Context, losses map[string]float32) error
}

var optimizers = make(map[string]func(ml.Backend) (Optimizer, error))

// RegisterOptimizer registriert eine Optimierer-Fabrik unter einem Namen
func RegisterOptimizer(name string, f func(ml.Backend) (Optimizer, error)) {
	if _, ok := optimizers[name]; ok {
		panic("train: optimizer already registered")
	}

	optimizers[name] = f
}

// NewOptimizer erstellt einen registrierten Optimierer
func NewOptimizer(name string, b ml.Backend) (Optimizer, error) {
	f, ok := optimizers[name]
	if !ok {
		return nil, fmt.Errorf("train: unknown optimizer %q", name)
	}

	return f(b)
}
