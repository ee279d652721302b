// Package model - Model-Interface und Initialisierung
//
// Dieses Paket definiert das Model-Interface und stellt Funktionen
// zur Initialisierung und Verwaltung von Vorhersage-Modellen bereit.
//
// Hauptkomponenten:
// - Model: Interface fuer alle Modell-Architekturen
// - Base: Basis-Implementierung fuer gemeinsame Funktionalitaet
// - New: Erstellt neue Model-Instanzen aus einer Modell-Datei
// - Register: Registriert Modell-Konstruktoren
package model

import (
	"errors"

	"github.com/videopred/sv2p/fs"
	"github.com/videopred/sv2p/ml"
	_ "github.com/videopred/sv2p/ml/backend"
	"github.com/videopred/sv2p/model/input"
)

// Fehler-Definitionen
var (
	ErrUnsupportedModel = errors.New("model not supported")
)

// Model definiert das Interface fuer spezifische Modell-Architekturen
type Model interface {
	// Forward fuehrt einen vollstaendigen Rollout ueber die Sequenz aus
	// und gibt fuer S Frames genau S-1 Vorhersagen zurueck
	Forward(ctx ml.Context, batch input.Batch, opts input.Rollout) (*input.Output, error)

	Backend() ml.Backend

	SetTraining(bool)
	Training() bool
}

// Base implementiert gemeinsame Felder und Methoden fuer alle Modelle
type Base struct {
	b        ml.Backend
	training bool
}

// Backend gibt das Backend zurueck, das das Modell ausfuehrt
func (m *Base) Backend() ml.Backend {
	return m.b
}

// SetTraining schaltet den Trainingsmodus um (Scheduled Sampling,
// Latent-Resampling pro Schritt)
func (m *Base) SetTraining(training bool) {
	m.training = training
}

// Training gibt zurueck, ob sich das Modell im Trainingsmodus befindet
func (m *Base) Training() bool {
	return m.training
}

// NewBase erstellt eine Base fuer ein Backend
func NewBase(b ml.Backend) Base {
	return Base{b: b}
}

// models speichert registrierte Modell-Konstruktoren
var models = make(map[string]func(ml.Backend) (Model, error))

// Register registriert einen Modell-Konstruktor fuer eine Architektur
func Register(name string, f func(ml.Backend) (Model, error)) {
	if _, ok := models[name]; ok {
		panic("model: model already registered")
	}

	models[name] = f
}

// New initialisiert eine neue Model-Instanz basierend auf den Metadaten
func New(modelPath string, params ml.BackendParams) (Model, error) {
	b, err := ml.NewBackend(modelPath, params)
	if err != nil {
		return nil, err
	}

	return modelForArch(b, b.Config())
}

// FromBackend erstellt ein Model direkt aus einem Backend, z.B. fuer
// frisch initialisierte Modelle ohne Modell-Datei
func FromBackend(b ml.Backend) (Model, error) {
	return modelForArch(b, b.Config())
}

// modelForArch erstellt ein Model basierend auf der Architektur
func modelForArch(b ml.Backend, c fs.Config) (Model, error) {
	f, ok := models[c.Architecture()]
	if !ok {
		return nil, ErrUnsupportedModel
	}

	return f(b)
}
