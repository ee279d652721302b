// backend.go - Natives CPU-Backend fuer sv2p
//
// Dieses Modul enthaelt:
// - Backend: Haelt Gewichte, Konfiguration und die Zufallsquelle
// - New: Laedt eine svtf-Datei (oder startet leer) und registriert sich
// - Get/Config/NewContext: ml.Backend Implementierung
//
// Alle Tensoren liegen als float32 im Speicher; F16-Gewichte werden beim
// Laden konvertiert. Die Zufallsquelle ist geseedet, damit Initialisierung
// und Latent-Sampling reproduzierbar sind.
package native

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/videopred/sv2p/fs"
	"github.com/videopred/sv2p/fs/svtf"
	"github.com/videopred/sv2p/ml"
)

func init() {
	ml.RegisterBackend("native", New)
}

// Backend ist das native CPU-Backend
type Backend struct {
	config  fs.KV
	weights map[string]*Tensor

	numThreads int

	mu  sync.Mutex
	rng *rand.Rand
}

// New erstellt ein Backend; modelPath darf leer sein (untrainiertes Modell,
// alle Gewichte werden bei Bedarf initialisiert)
func New(modelPath string, params ml.BackendParams) (ml.Backend, error) {
	numThreads := params.NumThreads
	if numThreads <= 0 {
		numThreads = 1
	}

	b := &Backend{
		config:     fs.KV{},
		weights:    make(map[string]*Tensor),
		numThreads: numThreads,
		rng:        rand.New(rand.NewPCG(uint64(params.Seed), uint64(params.Seed)+1)),
	}

	if modelPath == "" {
		return b, nil
	}

	f, err := svtf.ReadFile(modelPath)
	if err != nil {
		return nil, err
	}

	b.config = f.Config
	for _, name := range f.TensorNames() {
		data, shape, err := f.Float32s(name)
		if err != nil {
			return nil, err
		}
		b.weights[name] = &Tensor{b: b, shape: shape, data: data}
	}

	slog.Debug("loaded model", "path", modelPath, "tensors", len(b.weights), "arch", b.config.Architecture())
	return b, nil
}

// NewFromConfig erstellt ein gewichtsloses Backend mit gegebener Konfiguration.
// Wird von Tests und vom Trainings-Harness fuer frische Modelle verwendet.
func NewFromConfig(config fs.KV, params ml.BackendParams) *Backend {
	b, _ := New("", params)
	nb := b.(*Backend)
	if config != nil {
		nb.config = config
	}
	return nb
}

// Close gibt alle Ressourcen frei
func (b *Backend) Close() {
	b.weights = nil
}

// Config gibt die Modell-Konfiguration zurueck
func (b *Backend) Config() fs.Config {
	return b.config
}

// Get gibt den benannten Gewichts-Tensor zurueck oder nil
func (b *Backend) Get(name string) ml.Tensor {
	if t, ok := b.weights[name]; ok {
		return t
	}
	return nil
}

// Set registriert einen Gewichts-Tensor unter einem Namen
func (b *Backend) Set(name string, t ml.Tensor) {
	b.weights[name] = t.(*Tensor)
}

// Save serialisiert Konfiguration und alle Gewichte als svtf-Datei
func (b *Backend) Save(path string) error {
	tensors := make(map[string]svtf.Tensor, len(b.weights))
	for name, t := range b.weights {
		tensors[name] = svtf.Tensor{DType: svtf.DTypeF32, Shape: t.shape, Data: t.data}
	}
	return svtf.WriteFile(path, b.config, tensors)
}

// NewContext erstellt einen Compute-Kontext
func (b *Backend) NewContext() ml.Context {
	return &Context{b: b}
}

// normFloat32 zieht einen standard-normalverteilten Wert aus der Zufallsquelle
func (b *Backend) normFloat32() float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return float32(b.rng.NormFloat64())
}
