// Package dataset - Videosequenz-Datensaetze fuer Training und Evaluation
//
// Ein Datensatz ist ein Verzeichnis von Sequenz-Unterverzeichnissen; jede
// Sequenz enthaelt ihre Frames als Bilddateien in Namenssortierung und
// optional actions.json/states.json mit den Vektoren der Zeitschritte.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Options steuert Form und Laenge der geladenen Sequenzen
type Options struct {
	// SeqLen ist die Anzahl Frames pro Sequenz (mindestens 2)
	SeqLen int
	// Height und Width sind die Zielgroesse; Frames werden skaliert
	Height int
	Width  int
}

// Sequence ist eine einzelne Videosequenz auf der Platte
type Sequence struct {
	Dir    string
	Frames []string

	Actions [][]float32
	States  [][]float32
}

// Dataset ist eine Menge von Sequenzen unter einem Wurzelverzeichnis
type Dataset struct {
	opts Options
	seqs []Sequence
}

// Open durchsucht root nach Sequenz-Verzeichnissen. Sequenzen mit zu
// wenigen Frames werden abgelehnt, nicht uebersprungen: ein kaputter
// Datensatz soll frueh auffallen.
func Open(root string, opts Options) (*Dataset, error) {
	if opts.SeqLen < 2 {
		return nil, fmt.Errorf("dataset: sequence length must be at least 2, got %d", opts.SeqLen)
	}
	if opts.Height < 1 || opts.Width < 1 {
		return nil, fmt.Errorf("dataset: invalid frame size %dx%d", opts.Height, opts.Width)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}

	d := &Dataset{opts: opts}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		seq, err := readSequence(filepath.Join(root, e.Name()), opts.SeqLen)
		if err != nil {
			return nil, err
		}
		d.seqs = append(d.seqs, seq)
	}

	if len(d.seqs) == 0 {
		return nil, fmt.Errorf("dataset: no sequences under %s", root)
	}

	return d, nil
}

func readSequence(dir string, seqLen int) (Sequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Sequence{}, fmt.Errorf("dataset: %w", err)
	}

	seq := Sequence{Dir: dir}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
			seq.Frames = append(seq.Frames, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(seq.Frames)

	if len(seq.Frames) < seqLen {
		return Sequence{}, fmt.Errorf("dataset: %s has %d frames, need %d", dir, len(seq.Frames), seqLen)
	}
	seq.Frames = seq.Frames[:seqLen]

	if seq.Actions, err = readVectors(filepath.Join(dir, "actions.json"), seqLen-1); err != nil {
		return Sequence{}, err
	}
	if seq.States, err = readVectors(filepath.Join(dir, "states.json"), seqLen-1); err != nil {
		return Sequence{}, err
	}

	return seq, nil
}

// readVectors laedt eine JSON-Datei mit [steps][dim]-Vektoren; eine
// fehlende Datei ist kein Fehler (Sequenz ohne Konditionierung)
func readVectors(path string, steps int) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}

	var vecs [][]float32
	if err := json.Unmarshal(data, &vecs); err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}

	if len(vecs) < steps {
		return nil, fmt.Errorf("dataset: %s has %d steps, need %d", path, len(vecs), steps)
	}
	return vecs[:steps], nil
}

// Len gibt die Anzahl der Sequenzen zurueck
func (d *Dataset) Len() int {
	return len(d.seqs)
}

// Sequences gibt die entdeckten Sequenzen zurueck
func (d *Dataset) Sequences() []Sequence {
	return d.seqs
}
