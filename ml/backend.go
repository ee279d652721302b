// backend.go - Backend-Interface und Registrierung fuer ML-Modelle
// Dieses Modul definiert das Backend-Interface und die Backend-Factory-Funktionen.
package ml

import (
	"fmt"

	"github.com/videopred/sv2p/fs"
)

// Backend represents a model execution backend (e.g., the native CPU backend).
type Backend interface {
	// Close frees all memory associated with this backend
	Close()

	Config() fs.Config

	// Get returns the named weight tensor, or nil if the model file does
	// not carry it (callers fall back to initialization).
	Get(name string) Tensor

	// Set registers a weight tensor under a name so it is found by later
	// Get calls and included when the model is checkpointed.
	Set(name string, t Tensor)

	NewContext() Context
}

// BackendParams controls how the backend loads and executes models
type BackendParams struct {
	// NumThreads sets the number of threads to use if running on the CPU
	NumThreads int

	// Seed initializes the backend's random source. Weight fallback
	// initialization and latent sampling both draw from it, so runs with
	// equal seeds are reproducible.
	Seed int64
}

var backends = make(map[string]func(string, BackendParams) (Backend, error))

// RegisterBackend registers a backend factory function.
func RegisterBackend(name string, f func(string, BackendParams) (Backend, error)) {
	if _, ok := backends[name]; ok {
		panic("backend: backend already registered")
	}

	backends[name] = f
}

// NewBackend creates a new backend instance for the given model path.
func NewBackend(modelPath string, params BackendParams) (Backend, error) {
	if backend, ok := backends["native"]; ok {
		return backend(modelPath, params)
	}

	return nil, fmt.Errorf("unsupported backend")
}
