package metrics

import (
	"math"
	"testing"

	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/backend/native"
)

func testContext() ml.Context {
	b := native.NewFromConfig(nil, ml.BackendParams{NumThreads: 2, Seed: 1})
	return b.NewContext()
}

func TestIdenticalFrames(t *testing.T) {
	ctx := testContext()
	x := ctx.RandNormal(2, 2, 3, 8, 8)

	got := Evaluate(ctx, MultiScaleSSIM{}, x, x)

	if math.Abs(float64(got["ssim"])-1) > 1e-4 {
		t.Errorf("ssim = %v, want 1", got["ssim"])
	}
	if got["psnr"] != maxPSNR {
		t.Errorf("psnr = %v, want %v", got["psnr"], float32(maxPSNR))
	}
	if math.Abs(float64(got["percep"])-1) > 1e-4 {
		t.Errorf("percep = %v, want 1", got["percep"])
	}
}

func TestDissimilarFramesScoreLower(t *testing.T) {
	ctx := testContext()

	// Konstant -1 gegen konstant +1: maximal verschiedene Bilder
	x := ctx.Ones(ml.DTypeF32, 1, 2, 3, 8, 8).Scale(ctx, -1)
	y := ctx.Ones(ml.DTypeF32, 1, 2, 3, 8, 8)

	got := Evaluate(ctx, MultiScaleSSIM{}, x, y)

	if got["ssim"] > 0.5 {
		t.Errorf("ssim = %v, want well below 1", got["ssim"])
	}
	if got["psnr"] > 1 {
		t.Errorf("psnr = %v, want near 0 dB", got["psnr"])
	}
	if got["percep"] > 0.5 {
		t.Errorf("percep = %v, want well below 1", got["percep"])
	}
}

func TestPSNRKnownValue(t *testing.T) {
	ctx := testContext()

	// Konstante Differenz 0.5 nach Reskalierung: MSE 0.25, PSNR ~6.02 dB
	x := ctx.Ones(ml.DTypeF32, 1, 1, 1, 4, 4).Scale(ctx, -1)
	y := ctx.Zeros(ml.DTypeF32, 1, 1, 1, 4, 4)

	xr := rescale(ctx, flattenSeq(ctx, x))
	yr := rescale(ctx, flattenSeq(ctx, y))

	want := -10 * math.Log10(0.25)
	if got := PSNR(ctx, xr, yr); math.Abs(float64(got)-want) > 1e-3 {
		t.Errorf("psnr = %v, want %v", got, want)
	}
}

func TestRescaleClamps(t *testing.T) {
	ctx := testContext()

	x := ctx.FromFloats([]float32{-3, -1, 0, 1, 3}, 1, 1, 1, 1, 5)
	got := rescale(ctx, flattenSeq(ctx, x)).Floats()

	want := []float32{0, 0, 0.5, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rescale[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
