// Package input - Ein- und Ausgabetypen fuer Videovorhersage-Modelle
//
// Dieses Modul enthaelt:
// - Batch: Eine Beobachtungssequenz mit optionalen Aktionen/Zustaenden
// - Rollout: Steuerung eines Vorhersage-Durchlaufs
// - Output: Gestapelte Ausgaben aller Zeitschritte
package input

import (
	"github.com/videopred/sv2p/ml"
)

// Batch ist eine Beobachtungssequenz. RGB hat die Form [B, S, C, H, W];
// Actions und States haben die Form [B, S-1, ·] und duerfen nil sein.
type Batch struct {
	RGB     ml.Tensor
	Actions ml.Tensor
	States  ml.Tensor
}

// Rollout steuert einen Vorhersage-Durchlauf.
//
// Inference aktiviert die Posterior-Ableitung aus der vollstaendigen
// Sequenz; das setzt Ground-Truth fuer alle Zeitschritte voraus und ist
// daher nur beim Training/Validieren zulaessig, nie bei reiner Vorhersage.
// SamplingProb ist die Scheduled-Sampling-Wahrscheinlichkeit p in [0,1],
// mit der ein Beispiel den Ground-Truth-Frame statt der eigenen Vorhersage
// als Eingabe erhaelt (nur im Trainingsmodus wirksam).
type Rollout struct {
	Inference    bool
	SamplingProb float32
}

// Output sind die entlang der Zeitachse gestapelten Ausgaben eines
// Durchlaufs. Frames hat die Form [B, S-1, C, H, W]. Mu und Std sind nur
// bei stochastischen Modellen gesetzt; das steht pro Durchlauf einmal fest.
type Output struct {
	Embeddings ml.Tensor
	Masks      ml.Tensor
	Frames     ml.Tensor
	Mu         ml.Tensor
	Std        ml.Tensor
}

// Map gibt die Ausgaben unter ihren kanonischen Namen zurueck
func (o *Output) Map() map[string]ml.Tensor {
	m := map[string]ml.Tensor{
		"emb_t":   o.Embeddings,
		"masks_t": o.Masks,
		"nxtrgb":  o.Frames,
	}
	if o.Mu != nil {
		m["mu_t"] = o.Mu
		m["std_t"] = o.Std
	}
	return m
}
