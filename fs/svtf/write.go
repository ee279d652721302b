// write.go - Schreiben von svtf-Dateien
//
// Dieses Modul enthaelt:
// - WriteFile: Serialisiert Konfiguration und Tensoren in eine svtf-Datei
package svtf

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/x448/float16"

	"github.com/videopred/sv2p/fs"
)

// WriteFile serialisiert config und tensors nach path
func WriteFile(path string, config fs.KV, tensors map[string]Tensor) error {
	infos := make(map[string]TensorInfo, len(tensors))

	// Offsets deterministisch in Namensreihenfolge vergeben
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	slices.Sort(names)

	var offset uint64
	for _, name := range names {
		t := tensors[name]
		n := numElements(t.Shape)
		if n != len(t.Data) {
			return fmt.Errorf("svtf: tensor %q shape %v does not match %d elements", name, t.Shape, len(t.Data))
		}

		var size uint64
		switch t.DType {
		case DTypeF32:
			size = uint64(4 * n)
		case DTypeF16:
			size = uint64(2 * n)
		default:
			return fmt.Errorf("svtf: tensor %q has unsupported dtype %q", name, t.DType)
		}

		infos[name] = TensorInfo{DType: t.DType, Shape: t.Shape, Offset: offset, Size: size}
		offset = align(offset+size, alignment)
	}

	hdr, err := json.Marshal(header{Config: config, Tensors: infos})
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	w.WriteString(magic)
	binary.Write(w, binary.LittleEndian, uint32(version))
	binary.Write(w, binary.LittleEndian, uint64(len(hdr)))
	w.Write(hdr)

	var written uint64
	for _, name := range names {
		t, info := tensors[name], infos[name]
		for written < info.Offset {
			w.WriteByte(0)
			written++
		}

		switch t.DType {
		case DTypeF32:
			var buf [4]byte
			for _, v := range t.Data {
				binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
				w.Write(buf[:])
			}
		case DTypeF16:
			var buf [2]byte
			for _, v := range t.Data {
				binary.LittleEndian.PutUint16(buf[:], float16.Fromfloat32(v).Bits())
				w.Write(buf[:])
			}
		}
		written += info.Size
	}

	return w.Flush()
}

func align(offset, alignment uint64) uint64 {
	return (offset + alignment - 1) / alignment * alignment
}
