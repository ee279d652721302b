package sv2p

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/videopred/sv2p/fs"
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/backend/native"
	"github.com/videopred/sv2p/model/input"
)

// newTestModel erstellt ein kleines Modell ohne Checkpoint; cfg
// ueberschreibt die Basis-Konfiguration
func newTestModel(t *testing.T, cfg fs.KV, seed int64) (*Model, ml.Context) {
	t.Helper()

	base := fs.KV{
		"general.architecture":  "sv2p",
		"sv2p.encoder_channels": []uint32{2, 3, 4, 4},
		"sv2p.lstm_kernel":      3,
		"sv2p.cdna_kernel":      3,
	}
	for k, v := range cfg {
		base[k] = v
	}

	b := native.NewFromConfig(base, ml.BackendParams{NumThreads: 2, Seed: seed})

	mi, err := New(b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return mi.(*Model), b.NewContext()
}

func testBatch(ctx ml.Context, batch, seq, chans, height, width int) input.Batch {
	return input.Batch{RGB: ctx.RandNormal(batch, seq, chans, height, width)}
}

func TestRolloutShapes(t *testing.T) {
	m, ctx := newTestModel(t, nil, 1)

	out, err := m.Forward(ctx, testBatch(ctx, 2, 3, 3, 8, 8), input.Rollout{})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	// S Frames ergeben S-1 Vorhersagen
	if diff := cmp.Diff([]int{2, 2, 3, 8, 8}, out.Frames.Shape()); diff != "" {
		t.Errorf("frames shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 2, 2, 8, 8}, out.Masks.Shape()); diff != "" {
		t.Errorf("masks shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 2, 4, 1, 1}, out.Embeddings.Shape()); diff != "" {
		t.Errorf("embeddings shape mismatch (-want +got):\n%s", diff)
	}

	// Deterministisches Modell liefert keine Verteilungsparameter
	if out.Mu != nil || out.Std != nil {
		t.Error("deterministic model must not emit mu/std")
	}
	if _, ok := out.Map()["mu_t"]; ok {
		t.Error("output map must not contain mu_t")
	}
}

func TestStochasticPriorOutputs(t *testing.T) {
	m, ctx := newTestModel(t, fs.KV{"sv2p.stochastic": true, "sv2p.latent_dim": 4}, 1)

	out, err := m.Forward(ctx, testBatch(ctx, 2, 3, 3, 8, 8), input.Rollout{})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if diff := cmp.Diff([]int{2, 2, 4}, out.Mu.Shape()); diff != "" {
		t.Errorf("mu shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 2, 4}, out.Std.Shape()); diff != "" {
		t.Errorf("std shape mismatch (-want +got):\n%s", diff)
	}

	// Ohne Posterior-Ableitung stammen die Parameter vom Standard-Prior
	for _, v := range out.Mu.Floats() {
		if v != 0 {
			t.Fatalf("prior mean must be 0, got %v", v)
		}
	}
	for _, v := range out.Std.Floats() {
		if v != 1 {
			t.Fatalf("prior std must be 1, got %v", v)
		}
	}
}

func TestPosteriorInference(t *testing.T) {
	m, ctx := newTestModel(t, fs.KV{"sv2p.stochastic": true, "sv2p.latent_dim": 4}, 1)
	m.SetTraining(true)

	out, err := m.Forward(ctx, testBatch(ctx, 2, 3, 3, 8, 8), input.Rollout{Inference: true, SamplingProb: 1})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	var nonzero bool
	for _, v := range out.Mu.Floats() {
		if v != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Error("posterior mean should differ from the prior")
	}

	for _, v := range out.Std.Floats() {
		if v <= 0 {
			t.Fatalf("posterior std must be positive, got %v", v)
		}
	}
}

func TestReuseFirstAddsMask(t *testing.T) {
	m, ctx := newTestModel(t, fs.KV{"sv2p.reuse_first_rgb": true}, 1)

	if m.numMasks != 3 {
		t.Fatalf("expected 3 masks with reuse_first_rgb, got %d", m.numMasks)
	}

	out, err := m.Forward(ctx, testBatch(ctx, 2, 3, 3, 8, 8), input.Rollout{})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if diff := cmp.Diff([]int{2, 2, 3, 8, 8}, out.Masks.Shape()); diff != "" {
		t.Errorf("masks shape mismatch (-want +got):\n%s", diff)
	}
}

func TestMasksSumToOne(t *testing.T) {
	m, ctx := newTestModel(t, nil, 1)

	out, err := m.Forward(ctx, testBatch(ctx, 2, 3, 3, 8, 8), input.Rollout{})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	for _, v := range out.Masks.Sum(ctx, 2).Floats() {
		if math.Abs(float64(v)-1) > 1e-5 {
			t.Fatalf("mask sum must be 1 per pixel, got %v", v)
		}
	}
}

func TestScheduledSampling(t *testing.T) {
	b := native.NewFromConfig(nil, ml.BackendParams{NumThreads: 1, Seed: 1})
	ctx := b.NewContext()

	gt := ctx.FromFloats([]float32{1, 2}, 2, 1)
	pred := ctx.FromFloats([]float32{3, 4}, 2, 1)

	cases := []struct {
		p    float32
		want []float32
	}{
		{1, []float32{1, 2}},
		{0, []float32{3, 4}},
		{0.5, []float32{1, 4}},
	}

	for _, tt := range cases {
		got := scheduledSampling(ctx, gt, pred, tt.p).Floats()
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("p=%v mismatch (-want +got):\n%s", tt.p, diff)
		}
	}
}

func TestRetainLatent(t *testing.T) {
	cases := []struct {
		timeInvariant, training, want bool
	}{
		{true, false, true},
		{true, true, false},
		{false, false, false},
		{false, true, false},
	}

	for _, tt := range cases {
		if got := retainLatent(tt.timeInvariant, tt.training); got != tt.want {
			t.Errorf("retainLatent(%v, %v) = %v, want %v", tt.timeInvariant, tt.training, got, tt.want)
		}
	}
}

func TestKLDivergence(t *testing.T) {
	b := native.NewFromConfig(nil, ml.BackendParams{NumThreads: 1, Seed: 1})
	ctx := b.NewContext()

	unit := repeatToBatch(ctx, unitState(ctx, 3), 2)

	// KL einer Verteilung gegen sich selbst ist 0
	if kl := klDivergence(ctx, unit, unit); math.Abs(float64(kl)) > 1e-6 {
		t.Errorf("KL(q||q) = %v, want 0", kl)
	}

	shifted := ContState{
		Mean: unit.Mean.AddScalar(ctx, 1),
		Std:  unit.Std,
	}
	// Verschobener Mean bei Einheits-Streuung: KL = d/2 = 1.5
	if kl := klDivergence(ctx, shifted, unit); math.Abs(float64(kl)-1.5) > 1e-5 {
		t.Errorf("KL(shifted||unit) = %v, want 1.5", kl)
	}
}

func TestLossDeterministicNoKL(t *testing.T) {
	m, ctx := newTestModel(t, nil, 1)

	batch := testBatch(ctx, 2, 3, 3, 8, 8)
	out, err := m.Forward(ctx, batch, input.Rollout{})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	losses := m.Loss(ctx, batch, out)
	if losses["loss_kl"] != 0 {
		t.Errorf("deterministic model must have zero KL, got %v", losses["loss_kl"])
	}
	if losses["loss_total"] != losses["loss2d_rgbrcs"] {
		t.Errorf("total %v must equal reconstruction %v without KL", losses["loss_total"], losses["loss2d_rgbrcs"])
	}
}

func TestLossPerfectReconstruction(t *testing.T) {
	m, ctx := newTestModel(t, nil, 1)

	batch := testBatch(ctx, 1, 3, 3, 8, 8)
	out := &input.Output{Frames: batch.RGB.Slice(ctx, 1, 1, 3, 1)}

	losses := m.Loss(ctx, batch, out)
	if losses["loss2d_rgbrcs"] != 0 {
		t.Errorf("identical frames must give zero reconstruction loss, got %v", losses["loss2d_rgbrcs"])
	}
}

func TestSetKLBeta(t *testing.T) {
	m, _ := newTestModel(t, nil, 1)

	m.SetKLBeta(0.5)
	if m.KLBeta() != 0.5 {
		t.Errorf("KLBeta = %v, want 0.5", m.KLBeta())
	}
}

func TestSeedDeterminism(t *testing.T) {
	frames := func(seed int64) []float32 {
		m, ctx := newTestModel(t, nil, seed)
		out, err := m.Forward(ctx, testBatch(ctx, 2, 3, 3, 8, 8), input.Rollout{})
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		return out.Frames.Floats()
	}

	if diff := cmp.Diff(frames(7), frames(7)); diff != "" {
		t.Errorf("same seed must reproduce the rollout (-a +b):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	m, ctx := newTestModel(t, nil, 1)

	cases := []struct {
		name  string
		batch input.Batch
		opts  input.Rollout
	}{
		{"too short", testBatch(ctx, 2, 1, 3, 8, 8), input.Rollout{}},
		{"bad frame size", testBatch(ctx, 2, 3, 3, 6, 6), input.Rollout{}},
		{"wrong channels", testBatch(ctx, 2, 3, 1, 8, 8), input.Rollout{}},
		{"no frames", input.Batch{}, input.Rollout{}},
		{"inference on deterministic", testBatch(ctx, 2, 3, 3, 8, 8), input.Rollout{Inference: true}},
		{"bad sampling prob", testBatch(ctx, 2, 3, 3, 8, 8), input.Rollout{SamplingProb: 2}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Forward(ctx, tt.batch, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestActionConditioning(t *testing.T) {
	cfg := fs.KV{"sv2p.act_cond": true, "sv2p.action_dim": 2, "sv2p.state_dim": 3}
	m, ctx := newTestModel(t, cfg, 1)

	batch := testBatch(ctx, 2, 3, 3, 8, 8)

	// Ohne Aktionen/Zustaende muss die Validierung ablehnen
	if _, err := m.Forward(ctx, batch, input.Rollout{}); err == nil {
		t.Fatal("expected error for missing actions")
	}

	batch.Actions = ctx.RandNormal(2, 2, 2)
	batch.States = ctx.RandNormal(2, 2, 3)

	out, err := m.Forward(ctx, batch, input.Rollout{})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if diff := cmp.Diff([]int{2, 2, 3, 8, 8}, out.Frames.Shape()); diff != "" {
		t.Errorf("frames shape mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  fs.KV
	}{
		{"act_cond without action_dim", fs.KV{"sv2p.act_cond": true}},
		{"stochastic without latent_dim", fs.KV{"sv2p.stochastic": true, "sv2p.latent_dim": 0}},
		{"even kernel", fs.KV{"sv2p.lstm_kernel": 4}},
		{"zero context", fs.KV{"sv2p.context_frames": 0}},
		{"bad channels", fs.KV{"sv2p.encoder_channels": []uint32{8, 8}}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newOptions(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
