// Package svtf - Gewichts-Container fuer sv2p Modelle
//
// Dateiformat (little-endian):
//   magic   [4]byte "svtf"
//   version uint32
//   hdrlen  uint64
//   header  JSON (Modell-Konfiguration + Tensor-Verzeichnis)
//   data    rohe Tensor-Daten, 32-Byte aligned pro Tensor
//
// Dieses Modul enthaelt die Typen des Formats; Lesen und Schreiben sind
// ausgelagert (read.go, write.go).
package svtf

import (
	"github.com/videopred/sv2p/fs"
)

const (
	magic   = "svtf"
	version = 1

	alignment = 32
)

// Tensor-Datentypen im Container
const (
	DTypeF32 = "F32"
	DTypeF16 = "F16"
)

// TensorInfo beschreibt einen Tensor im Verzeichnis des Headers
type TensorInfo struct {
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset uint64 `json:"offset"`
	Size   uint64 `json:"size"`
}

// header ist der JSON-Header der Datei
type header struct {
	Config  fs.KV                 `json:"config"`
	Tensors map[string]TensorInfo `json:"tensors"`
}

// File ist eine gelesene svtf-Datei
type File struct {
	Config  fs.KV
	tensors map[string]TensorInfo
	data    []byte
}

// Has prueft, ob ein Tensor im Container vorhanden ist
func (f *File) Has(name string) bool {
	_, ok := f.tensors[name]
	return ok
}

// TensorNames gibt alle Tensor-Namen zurueck
func (f *File) TensorNames() []string {
	names := make([]string, 0, len(f.tensors))
	for name := range f.tensors {
		names = append(names, name)
	}
	return names
}

// Tensor ist ein zu schreibender Tensor (write.go)
type Tensor struct {
	DType string
	Shape []int
	Data  []float32
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
