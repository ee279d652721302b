// sampling.go - Scheduled Sampling und Latent-Haltung
package sv2p

import (
	"math"

	"github.com/videopred/sv2p/ml"
)

// scheduledSampling mischt Ground-Truth und eigene Vorhersage pro Beispiel:
// die ersten round(B*p) Beispiele des Batches erhalten den Ground-Truth-
// Frame, der Rest die Vorhersage. Die Aufteilung ist deterministisch, die
// Anzahl entspricht exakt dem Erwartungswert von p.
func scheduledSampling(ctx ml.Context, gt, pred ml.Tensor, p float32) ml.Tensor {
	batch := gt.Dim(0)
	numTrue := int(math.Round(float64(p) * float64(batch)))

	switch {
	case numTrue >= batch:
		return gt
	case numTrue <= 0:
		return pred
	}

	head := gt.Slice(ctx, 0, 0, numTrue, 1)
	tail := pred.Slice(ctx, 0, numTrue, batch, 1)
	return head.Concat(ctx, tail, 0)
}

// retainLatent gibt zurueck, ob der Latent-Code ueber Zeitschritte hinweg
// gehalten wird. Im Training wird pro Schritt neu gezogen; ausserhalb des
// Trainings haelt ein zeitinvariantes Modell den Code fuer die ganze
// Sequenz.
func retainLatent(timeInvariant, training bool) bool {
	return timeInvariant && !training
}
