// Package convert - Konvertiert trainierte Checkpoints in das svtf-Format
//
// Unterstuetzt werden PyTorch-Pickle-Checkpoints (model.pt) und
// Safetensors (model.safetensors), jeweils mit einer config.json fuer die
// Hyperparameter. Tensor-Layouts werden beim Konvertieren an die
// Erwartungen des nativen Backends angepasst.
package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/videopred/sv2p/fs/svtf"
)

var errNoCheckpoint = errors.New("convert: no model.pt or model.safetensors found")

// Convert liest einen Checkpoint aus fsys und schreibt ihn nach outPath
func Convert(fsys fs.FS, outPath string) error {
	kv, err := loadParameters(fsys)
	if err != nil {
		return err
	}

	var tensors map[string]namedTensor
	switch {
	case exists(fsys, "model.safetensors"):
		tensors, err = loadSafetensors(fsys, "model.safetensors")
	case exists(fsys, "model.pt"):
		tensors, err = loadTorch(fsys, "model.pt")
	default:
		err = errNoCheckpoint
	}
	if err != nil {
		return err
	}

	out := make(map[string]svtf.Tensor, len(tensors))
	for name, t := range tensors {
		data, shape, err := repack(name, t.data, t.shape)
		if err != nil {
			return err
		}
		out[name] = svtf.Tensor{DType: svtf.DTypeF32, Shape: shape, Data: data}
	}

	slog.Info("writing model", "path", outPath, "tensors", len(out))
	return svtf.WriteFile(outPath, kv, out)
}

// namedTensor ist ein gelesener Checkpoint-Tensor in float32
type namedTensor struct {
	shape []int
	data  []float32
}

func exists(fsys fs.FS, name string) bool {
	_, err := fs.Stat(fsys, name)
	return err == nil
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func checkSize(name string, data []float32, shape []int) error {
	if len(data) != numElements(shape) {
		return fmt.Errorf("convert: tensor %q has %d values for shape %v", name, len(data), shape)
	}
	return nil
}
