// torch.go - Lesen von PyTorch-Pickle-Checkpoints
package convert

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
)

// loadTorch liest ein PyTorch-Checkpoint. Lightning-Checkpoints tragen
// das State-Dict unter "state_dict"; der "model."-Prefix der Schluessel
// wird entfernt.
func loadTorch(fsys fs.FS, name string) (map[string]namedTensor, error) {
	// gopickle braucht einen Pfad; den Inhalt bei Bedarf auslagern
	path, cleanup, err := materialize(fsys, name)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	obj, err := pytorch.Load(path)
	if err != nil {
		return nil, fmt.Errorf("convert: %s: %w", name, err)
	}

	sd, err := stateDict(obj)
	if err != nil {
		return nil, fmt.Errorf("convert: %s: %w", name, err)
	}

	tensors := make(map[string]namedTensor, len(sd))
	for key, val := range sd {
		t, ok := val.(*pytorch.Tensor)
		if !ok {
			continue
		}

		data, err := storageFloats(t)
		if err != nil {
			return nil, fmt.Errorf("convert: tensor %q: %w", key, err)
		}

		key = strings.TrimPrefix(key, "model.")
		if err := checkSize(key, data, t.Size); err != nil {
			return nil, err
		}
		tensors[key] = namedTensor{shape: t.Size, data: data}
	}

	return tensors, nil
}

// stateDict entpackt das State-Dict aus einem geladenen Checkpoint-Objekt
func stateDict(obj any) (map[string]any, error) {
	switch v := obj.(type) {
	case *types.OrderedDict:
		out := make(map[string]any, len(v.Map))
		for key, entry := range v.Map {
			name, ok := key.(string)
			if !ok {
				continue
			}
			out[name] = entry.Value
		}
		return out, nil

	case *types.Dict:
		if inner, ok := v.Get("state_dict"); ok {
			return stateDict(inner)
		}

		out := make(map[string]any, v.Len())
		for _, entry := range *v {
			name, ok := entry.Key.(string)
			if !ok {
				continue
			}
			out[name] = entry.Value
		}
		return out, nil
	}

	return nil, fmt.Errorf("unexpected checkpoint layout %T", obj)
}

// storageFloats kopiert die Daten eines Torch-Tensors als float32-Slice
func storageFloats(t *pytorch.Tensor) ([]float32, error) {
	n := numElements(t.Size)

	var src []float32
	switch s := t.Source.(type) {
	case *pytorch.FloatStorage:
		src = s.Data
	case *pytorch.HalfStorage:
		src = s.Data
	case *pytorch.BFloat16Storage:
		src = s.Data
	default:
		return nil, fmt.Errorf("unsupported storage %T", t.Source)
	}

	if t.StorageOffset+n > len(src) {
		return nil, fmt.Errorf("storage too small for shape %v", t.Size)
	}

	out := make([]float32, n)
	copy(out, src[t.StorageOffset:t.StorageOffset+n])
	return out, nil
}

// materialize kopiert name in eine Temporaerdatei und gibt deren Pfad
// zurueck
func materialize(fsys fs.FS, name string) (string, func(), error) {
	bts, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", nil, fmt.Errorf("convert: %w", err)
	}

	f, err := os.CreateTemp("", "sv2p-convert")
	if err != nil {
		return "", nil, err
	}
	if _, err := f.Write(bts); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, err
	}
	f.Close()

	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
