// safetensors.go - Lesen von Safetensors-Checkpoints
package convert

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"slices"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// safetensorInfo beschreibt einen Tensor im Safetensors-Header
type safetensorInfo struct {
	DType   string `json:"dtype"`
	Shape   []int  `json:"shape"`
	Offsets [2]int `json:"data_offsets"`
}

// loadSafetensors liest alle Tensoren einer Safetensors-Datei und
// konvertiert F16/BF16 nach float32
func loadSafetensors(fsys fs.FS, name string) (map[string]namedTensor, error) {
	bts, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	if len(bts) < 8 {
		return nil, fmt.Errorf("convert: %s is truncated", name)
	}

	hdrLen := binary.LittleEndian.Uint64(bts)
	if hdrLen > uint64(len(bts)-8) {
		return nil, fmt.Errorf("convert: %s has invalid header length %d", name, hdrLen)
	}

	var infos map[string]safetensorInfo
	if err := json.Unmarshal(bts[8:8+hdrLen], &infos); err != nil {
		return nil, fmt.Errorf("convert: %s: %w", name, err)
	}
	delete(infos, "__metadata__")

	data := bts[8+hdrLen:]

	tensors := make(map[string]namedTensor, len(infos))
	for tname, info := range infos {
		if info.Offsets[0] < 0 || info.Offsets[1] > len(data) || info.Offsets[0] > info.Offsets[1] {
			return nil, fmt.Errorf("convert: tensor %q has invalid offsets %v", tname, info.Offsets)
		}
		raw := data[info.Offsets[0]:info.Offsets[1]]

		var f32s []float32
		switch info.DType {
		case "F32":
			f32s = make([]float32, len(raw)/4)
			for i := range f32s {
				f32s[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
			}
		case "F16":
			f32s = make([]float32, len(raw)/2)
			for i := range f32s {
				f32s[i] = float16.Frombits(binary.LittleEndian.Uint16(raw[2*i:])).Float32()
			}
		case "BF16":
			f32s = bfloat16.DecodeFloat32(raw)
		default:
			return nil, fmt.Errorf("convert: tensor %q has unsupported dtype %q", tname, info.DType)
		}

		if err := checkSize(tname, f32s, info.Shape); err != nil {
			return nil, err
		}
		tensors[tname] = namedTensor{shape: slices.Clone(info.Shape), data: f32s}
	}

	return tensors, nil
}
