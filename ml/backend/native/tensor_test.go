// tensor_test.go - Tests fuer Tensor-Operationen des nativen Backends
package native

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/videopred/sv2p/ml"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	b := NewFromConfig(nil, ml.BackendParams{NumThreads: 2, Seed: 42})
	t.Cleanup(b.Close)
	return b.NewContext().(*Context)
}

func TestBroadcastAdd(t *testing.T) {
	ctx := testContext(t)

	a := ctx.FromFloats([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := ctx.FromFloats([]float32{10, 20, 30}, 1, 3)

	got := a.Add(ctx, b).Floats()
	want := []float32{11, 22, 33, 14, 25, 36}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Add mismatch (-want +got):\n%s", diff)
	}
}

func TestSoftmaxDim(t *testing.T) {
	ctx := testContext(t)

	// Zwei Zeilen, Softmax ueber dim 1
	a := ctx.FromFloats([]float32{0, 0, 1, 1}, 2, 2)
	got := a.Softmax(ctx, 1).Floats()

	for _, i := range []int{0, 1, 2, 3} {
		if math.Abs(float64(got[i])-0.5) > 1e-6 {
			t.Errorf("Softmax[%d] = %f, erwartet 0.5", i, got[i])
		}
	}

	// Summe entlang der Softmax-Achse muss 1 sein
	sums := a.Softmax(ctx, 0).Sum(ctx, 0).Floats()
	for i, s := range sums {
		if math.Abs(float64(s)-1) > 1e-6 {
			t.Errorf("Softmax Spaltensumme[%d] = %f, erwartet 1", i, s)
		}
	}
}

func TestMulmat(t *testing.T) {
	ctx := testContext(t)

	a := ctx.FromFloats([]float32{1, 2, 3, 4}, 2, 2)
	b := ctx.FromFloats([]float32{5, 6, 7, 8}, 2, 2)

	got := a.Mulmat(ctx, b).Floats()
	want := []float32{19, 22, 43, 50}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Mulmat mismatch (-want +got):\n%s", diff)
	}
}

func TestConv2DIdentity(t *testing.T) {
	ctx := testContext(t)

	// 1x1-Kernel mit Gewicht 1 ist die Identitaet
	in := ctx.FromFloats([]float32{1, 2, 3, 4}, 1, 1, 2, 2)
	w := ctx.FromFloats([]float32{1}, 1, 1, 1, 1)

	got := in.Conv2D(ctx, w, 1, 1, 0, 0)
	if diff := cmp.Diff(in.Floats(), got.Floats()); diff != "" {
		t.Errorf("Conv2D identity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 1, 2, 2}, got.Shape()); diff != "" {
		t.Errorf("Conv2D shape mismatch (-want +got):\n%s", diff)
	}
}

func TestConv2DStridePadding(t *testing.T) {
	ctx := testContext(t)

	in := ctx.Ones(ml.DTypeF32, 1, 1, 4, 4)
	w := ctx.Ones(ml.DTypeF32, 2, 1, 3, 3)

	got := in.Conv2D(ctx, w, 2, 2, 1, 1)
	if diff := cmp.Diff([]int{1, 2, 2, 2}, got.Shape()); diff != "" {
		t.Errorf("Conv2D shape mismatch (-want +got):\n%s", diff)
	}

	// Ecke (0,0): 2x2 des Kernels liegt im Bild
	if v := got.Floats()[0]; v != 4 {
		t.Errorf("Conv2D Ecke = %f, erwartet 4", v)
	}
}

func TestConvTranspose2DShape(t *testing.T) {
	ctx := testContext(t)

	in := ctx.Ones(ml.DTypeF32, 2, 3, 4, 4)
	w := ctx.Ones(ml.DTypeF32, 3, 5, 2, 2)

	got := in.ConvTranspose2D(ctx, w, 2, 0)
	if diff := cmp.Diff([]int{2, 5, 8, 8}, got.Shape()); diff != "" {
		t.Errorf("ConvTranspose2D shape mismatch (-want +got):\n%s", diff)
	}
}

func TestPermute(t *testing.T) {
	ctx := testContext(t)

	a := ctx.FromFloats([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	got := a.Permute(ctx, 1, 0)

	if diff := cmp.Diff([]int{3, 2}, got.Shape()); diff != "" {
		t.Errorf("Permute shape mismatch (-want +got):\n%s", diff)
	}
	want := []float32{1, 4, 2, 5, 3, 6}
	if diff := cmp.Diff(want, got.Floats()); diff != "" {
		t.Errorf("Permute mismatch (-want +got):\n%s", diff)
	}
}

func TestSliceConcatChunk(t *testing.T) {
	ctx := testContext(t)

	a := ctx.FromFloats([]float32{1, 2, 3, 4, 5, 6, 7, 8}, 2, 4)

	s := a.Slice(ctx, 1, 1, 3, 1)
	if diff := cmp.Diff([]float32{2, 3, 6, 7}, s.Floats()); diff != "" {
		t.Errorf("Slice mismatch (-want +got):\n%s", diff)
	}

	c := s.Concat(ctx, s, 0)
	if diff := cmp.Diff([]int{4, 2}, c.Shape()); diff != "" {
		t.Errorf("Concat shape mismatch (-want +got):\n%s", diff)
	}

	chunks := a.Chunk(ctx, 1, 2)
	if len(chunks) != 2 {
		t.Fatalf("Chunk ergab %d Stuecke, erwartet 2", len(chunks))
	}
	if diff := cmp.Diff([]float32{1, 2, 5, 6}, chunks[0].Floats()); diff != "" {
		t.Errorf("Chunk[0] mismatch (-want +got):\n%s", diff)
	}
}

func TestStack(t *testing.T) {
	ctx := testContext(t)

	a := ctx.FromFloats([]float32{1, 2}, 2)
	b := ctx.FromFloats([]float32{3, 4}, 2)

	got := a.Stack(ctx, 0, b)
	if diff := cmp.Diff([]int{2, 2}, got.Shape()); diff != "" {
		t.Errorf("Stack shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{1, 2, 3, 4}, got.Floats()); diff != "" {
		t.Errorf("Stack mismatch (-want +got):\n%s", diff)
	}

	got = a.Stack(ctx, 1, b)
	if diff := cmp.Diff([]float32{1, 3, 2, 4}, got.Floats()); diff != "" {
		t.Errorf("Stack dim=1 mismatch (-want +got):\n%s", diff)
	}
}

func TestMeanSum(t *testing.T) {
	ctx := testContext(t)

	a := ctx.FromFloats([]float32{1, 2, 3, 4, 5, 6}, 2, 3)

	if v := a.Sum(ctx).Floats()[0]; v != 21 {
		t.Errorf("Sum = %f, erwartet 21", v)
	}
	if v := a.Mean(ctx).Floats()[0]; v != 3.5 {
		t.Errorf("Mean = %f, erwartet 3.5", v)
	}

	got := a.Mean(ctx, 1)
	if diff := cmp.Diff([]int{2}, got.Shape()); diff != "" {
		t.Errorf("Mean(1) shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{2, 5}, got.Floats()); diff != "" {
		t.Errorf("Mean(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestRandNormalDeterministic(t *testing.T) {
	params := ml.BackendParams{NumThreads: 1, Seed: 7}

	b1 := NewFromConfig(nil, params)
	b2 := NewFromConfig(nil, params)
	defer b1.Close()
	defer b2.Close()

	r1 := b1.NewContext().RandNormal(16).Floats()
	r2 := b2.NewContext().RandNormal(16).Floats()

	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Errorf("RandNormal nicht deterministisch bei gleichem Seed (-b1 +b2):\n%s", diff)
	}
}
