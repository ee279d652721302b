// sink.go - Senken fuer Trainings-Skalare
package train

import (
	"log/slog"
	"sort"
)

// ScalarSink nimmt benannte Skalare pro Schritt entgegen
type ScalarSink interface {
	Scalar(run string, step int, name string, value float32)
}

// SlogSink schreibt Skalare in den strukturierten Log
type SlogSink struct{}

func (SlogSink) Scalar(run string, step int, name string, value float32) {
	slog.Info("scalar", "run", run, "step", step, name, value)
}

// meanScores mittelt eine Liste von Score-Maps Schluessel fuer Schluessel
func meanScores(scores []map[string]float32) map[string]float32 {
	if len(scores) == 0 {
		return nil
	}

	out := make(map[string]float32, len(scores[0]))
	for _, s := range scores {
		for k, v := range s {
			out[k] += v
		}
	}
	for k := range out {
		out[k] /= float32(len(scores))
	}
	return out
}

// sortedKeys gibt die Schluessel einer Score-Map stabil sortiert zurueck
func sortedKeys(m map[string]float32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
