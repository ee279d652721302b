package train

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/videopred/sv2p/dataset"
	"github.com/videopred/sv2p/fs"
	"github.com/videopred/sv2p/metrics"
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/backend/native"
	"github.com/videopred/sv2p/model"
	"github.com/videopred/sv2p/model/input"
	"github.com/videopred/sv2p/model/models/sv2p"
)

func newTestPredictor(t *testing.T, stochastic bool) Predictor {
	t.Helper()

	b := native.NewFromConfig(fs.KV{
		"general.architecture":  "sv2p",
		"sv2p.encoder_channels": []uint32{2, 2, 2, 2},
		"sv2p.lstm_kernel":      3,
		"sv2p.cdna_kernel":      3,
		"sv2p.latent_dim":       2,
		"sv2p.stochastic":       stochastic,
		"sv2p.gen_iters":        2,
	}, ml.BackendParams{NumThreads: 2, Seed: 1})

	m, err := sv2p.New(b)
	if err != nil {
		t.Fatalf("sv2p.New: %v", err)
	}
	return m.(Predictor)
}

func writeTestDataset(t *testing.T, root string, seqs, frames int) {
	t.Helper()

	for s := 0; s < seqs; s++ {
		dir := filepath.Join(root, "seq"+string(rune('a'+s)))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}

		for i := 0; i < frames; i++ {
			img := image.NewRGBA(image.Rect(0, 0, 8, 8))
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					img.SetRGBA(x, y, color.RGBA{R: uint8(40 * i), G: uint8(60 * s), A: 255})
				}
			}

			f, err := os.Create(filepath.Join(dir, "frame_"+string(rune('a'+i))+".png"))
			if err != nil {
				t.Fatal(err)
			}
			if err := png.Encode(f, img); err != nil {
				t.Fatal(err)
			}
			f.Close()
		}
	}
}

func TestKLAnnealer(t *testing.T) {
	a := KLAnnealer{Target: 1, Delay: 10, Steps: 4}

	cases := []struct {
		step int
		want float32
	}{
		{0, 0},
		{10, 0},
		{11, 0.25},
		{12, 0.5},
		{14, 1},
		{100, 1},
	}

	for _, tt := range cases {
		if got := a.Beta(tt.step); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("Beta(%d) = %v, want %v", tt.step, got, tt.want)
		}
	}

	// Ohne Anneal-Schritte springt das Gewicht direkt auf das Ziel
	instant := KLAnnealer{Target: 0.5}
	if got := instant.Beta(1); got != 0.5 {
		t.Errorf("Beta(1) = %v, want 0.5", got)
	}
}

func TestMeanScores(t *testing.T) {
	got := meanScores([]map[string]float32{
		{"a": 1, "b": 4},
		{"a": 3, "b": 0},
	})

	if got["a"] != 2 || got["b"] != 2 {
		t.Errorf("meanScores = %v, want a=2 b=2", got)
	}

	if meanScores(nil) != nil {
		t.Error("meanScores(nil) must be nil")
	}
}

func TestTrainStepLossKeys(t *testing.T) {
	m := newTestPredictor(t, true)
	ctx := m.Backend().NewContext()

	batch := testBatch(ctx)
	losses, err := TrainStep(ctx, m, batch, 10)
	if err != nil {
		t.Fatalf("TrainStep: %v", err)
	}

	for _, k := range []string{"loss_total", "loss2d_rgbrcs", "loss_kl"} {
		if _, ok := losses[k]; !ok {
			t.Errorf("missing loss %q", k)
		}
	}
}

func TestEvalStepMetricKeys(t *testing.T) {
	m := newTestPredictor(t, false)
	ctx := m.Backend().NewContext()

	scores, err := EvalStep(ctx, m, metrics.MultiScaleSSIM{}, testBatch(ctx))
	if err != nil {
		t.Fatalf("EvalStep: %v", err)
	}

	for _, k := range []string{"loss_total", "ssim", "psnr", "percep"} {
		if _, ok := scores[k]; !ok {
			t.Errorf("missing score %q", k)
		}
	}

	if m.Training() {
		t.Error("EvalStep must leave the model in eval mode")
	}
}

func testBatch(ctx ml.Context) (b input.Batch) {
	b.RGB = ctx.RandNormal(2, 3, 3, 8, 8)
	return b
}

func TestTrainerRunAndCheckpoint(t *testing.T) {
	root := t.TempDir()
	writeTestDataset(t, root, 2, 3)

	d, err := dataset.Open(root, dataset.Options{SeqLen: 3, Height: 8, Width: 8})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ckpt := filepath.Join(t.TempDir(), "model.svtf")
	tr := New(newTestPredictor(t, false), nil, SlogSink{}, Config{
		Epochs:         1,
		CheckpointPath: ckpt,
	})

	if tr.ID == "" {
		t.Fatal("trainer must have a run id")
	}

	if err := tr.Run(context.Background(), d.Loader(2), d.Loader(2)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Der Checkpoint muss sich wieder als Modell laden lassen
	m, err := model.New(ckpt, ml.BackendParams{NumThreads: 1, Seed: 1})
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}

	ctx := m.Backend().NewContext()
	if _, err := m.Forward(ctx, testBatch(ctx), input.Rollout{}); err != nil {
		t.Fatalf("Forward after reload: %v", err)
	}
}
