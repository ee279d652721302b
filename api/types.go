// types.go - Request- und Response-Typen der HTTP-API
package api

import (
	"fmt"
	"time"
)

// PredictRequest ist eine Vorhersage-Anfrage. Frames sind die
// base64-kodierten Kontext-Frames in zeitlicher Reihenfolge; Horizon ist
// die Anzahl zusaetzlich vorherzusagender Frames.
type PredictRequest struct {
	Model  string   `json:"model"`
	Frames []string `json:"frames"`

	Actions [][]float32 `json:"actions,omitempty"`
	States  [][]float32 `json:"states,omitempty"`

	Horizon int `json:"horizon"`
}

// PredictResponse traegt die vorhergesagten Frames als base64-PNGs
type PredictResponse struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`

	Frames []string `json:"frames"`

	TotalDuration time.Duration `json:"total_duration"`
}

// MetricsRequest fordert die Evaluation eines Modells auf einem
// Datensatz-Verzeichnis des Servers an
type MetricsRequest struct {
	Model   string `json:"model"`
	Dataset string `json:"dataset"`

	SeqLen    int `json:"seq_len"`
	BatchSize int `json:"batch_size"`
	Height    int `json:"height"`
	Width     int `json:"width"`
}

// MetricsResponse sind die gemittelten Verluste und Metriken
type MetricsResponse struct {
	Model  string             `json:"model"`
	Scores map[string]float32 `json:"scores"`
}

// VersionResponse ist die Antwort auf /api/version
type VersionResponse struct {
	Version string `json:"version"`
}

// StatusError ist ein Fehler mit HTTP-Status
type StatusError struct {
	StatusCode   int    `json:"-"`
	Status       string `json:"-"`
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return "something went wrong, please see the sv2p server logs for details"
	}
}
