// anneal.go - KL-Gewicht-Annealing
package train

// KLAnnealer hebt das KL-Gewicht linear von 0 auf Target an, beginnend
// bei Delay Schritten. Ein zu frueh wirksamer KL-Term drueckt die
// Posterior-Verteilung auf den Prior, bevor sie etwas kodiert.
type KLAnnealer struct {
	Target float32
	Delay  int
	Steps  int
}

// Beta gibt das KL-Gewicht fuer einen Trainingsschritt zurueck
func (a KLAnnealer) Beta(step int) float32 {
	if step <= a.Delay {
		return 0
	}
	if a.Steps <= 0 || step >= a.Delay+a.Steps {
		return a.Target
	}

	return a.Target * float32(step-a.Delay) / float32(a.Steps)
}
