// models.go - Laden und Cachen von Modellen
package server

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/videopred/sv2p/envconfig"
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/model"
)

// modelCache haelt geladene Modelle unter ihrem Namen
type modelCache struct {
	mu     sync.Mutex
	loaded map[string]model.Model
}

func newModelCache() *modelCache {
	return &modelCache{loaded: make(map[string]model.Model)}
}

// resolve bildet einen Modellnamen auf einen Dateipfad im
// Modell-Verzeichnis ab; Pfade ausserhalb davon sind nicht erlaubt
func resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("model name is required")
	}
	if strings.Contains(name, "..") || filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid model name %q", name)
	}

	if filepath.Ext(name) == "" {
		name += ".svtf"
	}

	path := filepath.Join(envconfig.Models(), name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("model %q not found", name)
	}
	return path, nil
}

// get laedt ein Modell oder gibt die gecachte Instanz zurueck
func (c *modelCache) get(name string) (model.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.loaded[name]; ok {
		return m, nil
	}

	path, err := resolve(name)
	if err != nil {
		return nil, err
	}

	slog.Info("loading model", "name", name, "path", path)
	m, err := model.New(path, ml.BackendParams{
		NumThreads: envconfig.NumThreads(),
		Seed:       envconfig.Seed(),
	})
	if err != nil {
		return nil, err
	}

	c.loaded[name] = m
	return m, nil
}
