// context.go - Context und Tensor Interfaces fuer ML-Operationen
// Dieses Modul definiert die Schnittstellen fuer Tensor-Operationen und Compute-Kontexte.
package ml

// Context represents an execution context for tensor operations.
type Context interface {
	Empty(dtype DType, shape ...int) Tensor
	Zeros(dtype DType, shape ...int) Tensor
	Ones(dtype DType, shape ...int) Tensor
	FromFloats(s []float32, shape ...int) Tensor

	// Arange creates a 1D tensor with values within an interval [start, stop) increased by step.
	Arange(start, stop, step float32, dtype DType) Tensor

	// RandNormal creates a tensor of standard-normal samples drawn from the
	// backend's seeded random source. Used for weight fallback
	// initialization and for reparameterized latent sampling, which keeps
	// the sample differentiable with respect to distribution parameters.
	RandNormal(shape ...int) Tensor

	Forward(...Tensor) Context
	Compute(...Tensor)

	Close()
}

// Tensor represents a multi-dimensional array with various operations.
//
// All shapes are row-major; image tensors are NCHW. Binary operations
// broadcast in the usual way: dimensions must match or be 1.
type Tensor interface {
	Dim(n int) int
	Shape() []int
	DType() DType

	Floats() []float32

	Add(ctx Context, t2 Tensor) Tensor
	Sub(ctx Context, t2 Tensor) Tensor
	Mul(ctx Context, t2 Tensor) Tensor
	Div(ctx Context, t2 Tensor) Tensor
	Scale(ctx Context, s float64) Tensor
	AddScalar(ctx Context, s float64) Tensor

	// Mulmat multiplies [.., M, K] by [K, N] yielding [.., M, N].
	Mulmat(ctx Context, t2 Tensor) Tensor

	Softmax(ctx Context, dim int) Tensor
	Sigmoid(ctx Context) Tensor
	Tanh(ctx Context) Tensor
	RELU(ctx Context) Tensor
	Softplus(ctx Context) Tensor
	Exp(ctx Context) Tensor
	Log(ctx Context) Tensor
	Abs(ctx Context) Tensor
	Sqr(ctx Context) Tensor
	Sqrt(ctx Context) Tensor
	Clamp(ctx Context, min, max float32) Tensor

	Conv2D(ctx Context, weight Tensor, s0, s1, p0, p1 int) Tensor
	ConvTranspose2D(ctx Context, weight Tensor, s, p int) Tensor

	Reshape(ctx Context, shape ...int) Tensor
	Permute(ctx Context, shape ...int) Tensor

	// Repeat repeats the tensor n times along dimension dim
	Repeat(ctx Context, dim, n int) Tensor
	Concat(ctx Context, t2 Tensor, dim int) Tensor
	Stack(ctx Context, dim int, s ...Tensor) Tensor
	Chunk(ctx Context, dim int, size int) []Tensor
	Slice(ctx Context, dim, low, high, step int) Tensor
	Duplicate(ctx Context) Tensor

	// Mean and Sum reduce over the given dimensions (all when none given);
	// reduced dimensions are dropped from the shape.
	Mean(ctx Context, dims ...int) Tensor
	Sum(ctx Context, dims ...int) Tensor
}
