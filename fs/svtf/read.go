// read.go - Lesen von svtf-Dateien
//
// Dieses Modul enthaelt:
// - ReadFile: Liest Header und Daten einer svtf-Datei
// - Float32s: Dekodiert einen Tensor (F16 wird nach F32 konvertiert)
package svtf

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/x448/float16"
)

// ReadFile liest eine svtf-Datei vollstaendig in den Speicher
func ReadFile(path string) (*File, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(bts) < 16 || string(bts[:4]) != magic {
		return nil, fmt.Errorf("svtf: %s is not a svtf file", path)
	}

	if v := binary.LittleEndian.Uint32(bts[4:8]); v != version {
		return nil, fmt.Errorf("svtf: unsupported version %d", v)
	}

	hdrlen := binary.LittleEndian.Uint64(bts[8:16])
	if uint64(len(bts)) < 16+hdrlen {
		return nil, fmt.Errorf("svtf: truncated header")
	}

	var hdr header
	if err := json.Unmarshal(bts[16:16+hdrlen], &hdr); err != nil {
		return nil, fmt.Errorf("svtf: decoding header: %w", err)
	}

	return &File{
		Config:  hdr.Config,
		tensors: hdr.Tensors,
		data:    bts[16+hdrlen:],
	}, nil
}

// Float32s dekodiert den benannten Tensor als float32-Slice samt Shape
func (f *File) Float32s(name string) ([]float32, []int, error) {
	info, ok := f.tensors[name]
	if !ok {
		return nil, nil, fmt.Errorf("svtf: tensor %q not found", name)
	}

	if info.Offset+info.Size > uint64(len(f.data)) {
		return nil, nil, fmt.Errorf("svtf: tensor %q out of bounds", name)
	}

	raw := f.data[info.Offset : info.Offset+info.Size]
	n := numElements(info.Shape)

	s := make([]float32, n)
	switch info.DType {
	case DTypeF32:
		if len(raw) != 4*n {
			return nil, nil, fmt.Errorf("svtf: tensor %q has %d bytes, want %d", name, len(raw), 4*n)
		}
		for i := range s {
			s[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	case DTypeF16:
		if len(raw) != 2*n {
			return nil, nil, fmt.Errorf("svtf: tensor %q has %d bytes, want %d", name, len(raw), 2*n)
		}
		for i := range s {
			s[i] = float16.Frombits(binary.LittleEndian.Uint16(raw[2*i:])).Float32()
		}
	default:
		return nil, nil, fmt.Errorf("svtf: tensor %q has unsupported dtype %q", name, info.DType)
	}

	return s, info.Shape, nil
}
