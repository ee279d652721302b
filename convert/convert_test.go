package convert

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/d4l3k/go-bfloat16"
	"github.com/google/go-cmp/cmp"
	"github.com/videopred/sv2p/fs/svtf"
)

// buildSafetensors baut eine minimale Safetensors-Datei im Speicher
func buildSafetensors(t *testing.T, tensors map[string]namedTensor, dtype string) []byte {
	t.Helper()

	infos := make(map[string]safetensorInfo, len(tensors))
	var data []byte
	for name, nt := range tensors {
		start := len(data)
		switch dtype {
		case "F32":
			for _, v := range nt.data {
				data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
			}
		case "BF16":
			data = append(data, bfloat16.EncodeFloat32(nt.data)...)
		}
		infos[name] = safetensorInfo{DType: dtype, Shape: nt.shape, Offsets: [2]int{start, len(data)}}
	}

	hdr, err := json.Marshal(infos)
	if err != nil {
		t.Fatal(err)
	}

	out := binary.LittleEndian.AppendUint64(nil, uint64(len(hdr)))
	out = append(out, hdr...)
	return append(out, data...)
}

func TestLoadParameters(t *testing.T) {
	fsys := fstest.MapFS{
		"config.json": &fstest.MapFile{Data: []byte(`{
			"latent_dim": 4,
			"stochastic": true,
			"encoder_channels": [8, 16, 32, 32],
			"optimizer": "adam"
		}`)},
	}

	kv, err := loadParameters(fsys)
	if err != nil {
		t.Fatalf("loadParameters: %v", err)
	}

	if kv.Architecture() != "sv2p" {
		t.Errorf("architecture = %q, want sv2p", kv.Architecture())
	}
	if got := kv.Uint("sv2p.latent_dim"); got != 4 {
		t.Errorf("latent_dim = %d, want 4", got)
	}
	if !kv.Bool("sv2p.stochastic") {
		t.Error("stochastic must be true")
	}

	// Fremde Schluessel werden nicht uebernommen
	if _, ok := kv["sv2p.optimizer"]; ok {
		t.Error("unknown keys must not be mapped")
	}
}

func TestRepackLinear(t *testing.T) {
	data, shape, err := repack("knl_decoder.fc.weight", []float32{1, 2, 3, 4, 5, 6}, []int{2, 3})
	if err != nil {
		t.Fatalf("repack: %v", err)
	}

	if diff := cmp.Diff([]int{3, 2}, shape); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{1, 4, 2, 5, 3, 6}, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestRepackPassthrough(t *testing.T) {
	in := []float32{1, 2, 3, 4}
	data, shape, err := repack("obs_encoder.conv0.weight", in, []int{4, 1, 1, 1})
	if err != nil {
		t.Fatalf("repack: %v", err)
	}

	if diff := cmp.Diff(in, data); diff != "" {
		t.Errorf("conv weights must pass through unchanged (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 1, 1, 1}, shape); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertFromSafetensors(t *testing.T) {
	st := buildSafetensors(t, map[string]namedTensor{
		"obs_encoder.conv0.bias": {shape: []int{3}, data: []float32{1, 2, 3}},
		"knl_decoder.fc.weight":  {shape: []int{2, 3}, data: []float32{1, 2, 3, 4, 5, 6}},
	}, "F32")

	fsys := fstest.MapFS{
		"config.json":       &fstest.MapFile{Data: []byte(`{"latent_dim": 2}`)},
		"model.safetensors": &fstest.MapFile{Data: st},
	}

	out := filepath.Join(t.TempDir(), "model.svtf")
	if err := Convert(fsys, out); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	f, err := svtf.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got := f.Config.Uint("sv2p.latent_dim"); got != 2 {
		t.Errorf("latent_dim = %d, want 2", got)
	}

	bias, shape, err := f.Float32s("obs_encoder.conv0.bias")
	if err != nil {
		t.Fatalf("Float32s: %v", err)
	}
	if diff := cmp.Diff([]float32{1, 2, 3}, bias); diff != "" {
		t.Errorf("bias mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, shape); diff != "" {
		t.Errorf("bias shape mismatch (-want +got):\n%s", diff)
	}

	// Lineares Gewicht kommt transponiert an
	w, shape, err := f.Float32s("knl_decoder.fc.weight")
	if err != nil {
		t.Fatalf("Float32s: %v", err)
	}
	if diff := cmp.Diff([]int{3, 2}, shape); diff != "" {
		t.Errorf("weight shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{1, 4, 2, 5, 3, 6}, w); diff != "" {
		t.Errorf("weight mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSafetensorsBF16(t *testing.T) {
	st := buildSafetensors(t, map[string]namedTensor{
		"w": {shape: []int{4}, data: []float32{1, -2, 0.5, 0}},
	}, "BF16")

	fsys := fstest.MapFS{"model.safetensors": &fstest.MapFile{Data: st}}

	tensors, err := loadSafetensors(fsys, "model.safetensors")
	if err != nil {
		t.Fatalf("loadSafetensors: %v", err)
	}

	if diff := cmp.Diff([]float32{1, -2, 0.5, 0}, tensors["w"].data); diff != "" {
		t.Errorf("bf16 roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertMissingCheckpoint(t *testing.T) {
	fsys := fstest.MapFS{
		"config.json": &fstest.MapFile{Data: []byte(`{}`)},
	}

	if err := Convert(fsys, filepath.Join(t.TempDir(), "model.svtf")); err == nil {
		t.Error("expected error without checkpoint file")
	}
}
