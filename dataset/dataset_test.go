package dataset

import (
	"bytes"
	"context"
	"image"
	"math"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/backend/native"
)

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeSequence(t *testing.T, dir string, frames int, vecs string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	colors := []color.RGBA{
		{R: 255, G: 255, B: 255, A: 255},
		{A: 255},
		{R: 255, A: 255},
		{G: 255, A: 255},
	}
	for i := 0; i < frames; i++ {
		writePNG(t, filepath.Join(dir, "frame_"+string(rune('a'+i))+".png"), colors[i%len(colors)])
	}

	if vecs != "" {
		if err := os.WriteFile(filepath.Join(dir, "actions.json"), []byte(vecs), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func testContext() ml.Context {
	return native.NewFromConfig(nil, ml.BackendParams{NumThreads: 2, Seed: 1}).NewContext()
}

func TestOpenAndBatch(t *testing.T) {
	root := t.TempDir()
	writeSequence(t, filepath.Join(root, "seq0"), 3, "[[1, 2], [3, 4]]")
	writeSequence(t, filepath.Join(root, "seq1"), 4, "[[5, 6], [7, 8]]")

	d, err := Open(root, Options{SeqLen: 3, Height: 8, Width: 8})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}

	l := d.Loader(2)
	batch, err := l.Next(context.Background(), testContext())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	if diff := cmp.Diff([]int{2, 3, 3, 8, 8}, batch.RGB.Shape()); diff != "" {
		t.Errorf("rgb shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 2, 2}, batch.Actions.Shape()); diff != "" {
		t.Errorf("actions shape mismatch (-want +got):\n%s", diff)
	}
	if batch.States != nil {
		t.Error("states must be nil without states.json")
	}

	// Erster Frame ist weiss (1.0), zweiter schwarz (-1.0)
	pix := batch.RGB.Floats()
	if pix[0] != 1 {
		t.Errorf("white pixel = %v, want 1", pix[0])
	}
	if pix[3*8*8] != -1 {
		t.Errorf("black pixel = %v, want -1", pix[3*8*8])
	}

	if got := batch.Actions.Floats(); got[0] != 1 || got[3] != 4 {
		t.Errorf("actions = %v, want [1 2 3 4 ...]", got[:4])
	}

	// Ein Batch der Groesse 2 bei 2 Sequenzen, danach EOF
	if _, err := l.Next(context.Background(), testContext()); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestOpenRejectsShortSequence(t *testing.T) {
	root := t.TempDir()
	writeSequence(t, filepath.Join(root, "seq0"), 2, "")

	if _, err := Open(root, Options{SeqLen: 3, Height: 8, Width: 8}); err == nil {
		t.Error("expected error for short sequence")
	}
}

func TestOpenRejectsEmptyRoot(t *testing.T) {
	if _, err := Open(t.TempDir(), Options{SeqLen: 2, Height: 8, Width: 8}); err == nil {
		t.Error("expected error for empty dataset")
	}
}

func TestFrameCodecRoundtrip(t *testing.T) {
	pix := make([]float32, 3*8*8)
	for i := range pix {
		pix[i] = float32(i%17)/8 - 1
	}

	bts, err := EncodePNG(pix, 8, 8)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}

	got, err := DecodeFrame(bytes.NewReader(bts), 8, 8)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}

	// Quantisierung auf 8 Bit erlaubt etwa 1/127 Abweichung
	for i := range pix {
		if math.Abs(float64(got[i]-pix[i])) > 0.01 {
			t.Fatalf("pixel %d = %v, want %v", i, got[i], pix[i])
		}
	}
}

func TestShuffleDeterministic(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		writeSequence(t, filepath.Join(root, name), 2, "")
	}

	d, err := Open(root, Options{SeqLen: 2, Height: 8, Width: 8})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	a, b := d.Loader(1), d.Loader(1)
	a.Shuffle(42)
	b.Shuffle(42)

	if diff := cmp.Diff(a.order, b.order); diff != "" {
		t.Errorf("same seed must give same order (-a +b):\n%s", diff)
	}

	if a.Batches() != 5 {
		t.Errorf("Batches = %d, want 5", a.Batches())
	}
}
