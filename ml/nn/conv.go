// conv.go - Faltungs-Schichten (NCHW)
package nn

import (
	"github.com/videopred/sv2p/ml"
)

// Conv2D ist eine 2D-Faltung; Weight hat die Form [out, in, k, k]
type Conv2D struct {
	Weight ml.Tensor
	Bias   ml.Tensor

	Stride  int
	Padding int
}

// NewConv2D erstellt eine Conv2D-Schicht mit Gewichten aus dem Backend
func NewConv2D(ctx ml.Context, b ml.Backend, name string, in, out, kernel, stride, padding int) *Conv2D {
	return &Conv2D{
		Weight:  weight(ctx, b, name+".weight", fanInScale(in*kernel*kernel), out, in, kernel, kernel),
		Bias:    zeros(ctx, b, name+".bias", out),
		Stride:  stride,
		Padding: padding,
	}
}

// Forward faltet x der Form [B, in, H, W]
func (c *Conv2D) Forward(ctx ml.Context, x ml.Tensor) ml.Tensor {
	out := x.Conv2D(ctx, c.Weight, c.Stride, c.Stride, c.Padding, c.Padding)
	return out.Add(ctx, c.Bias.Reshape(ctx, 1, c.Bias.Dim(0), 1, 1))
}

// ConvTranspose2D ist eine transponierte Faltung; Weight hat die Form [in, out, k, k]
type ConvTranspose2D struct {
	Weight ml.Tensor
	Bias   ml.Tensor

	Stride  int
	Padding int
}

// NewConvTranspose2D erstellt eine ConvTranspose2D-Schicht mit Gewichten aus dem Backend
func NewConvTranspose2D(ctx ml.Context, b ml.Backend, name string, in, out, kernel, stride, padding int) *ConvTranspose2D {
	return &ConvTranspose2D{
		Weight:  weight(ctx, b, name+".weight", fanInScale(in*kernel*kernel), in, out, kernel, kernel),
		Bias:    zeros(ctx, b, name+".bias", out),
		Stride:  stride,
		Padding: padding,
	}
}

// Forward entfaltet x der Form [B, in, H, W]
func (c *ConvTranspose2D) Forward(ctx ml.Context, x ml.Tensor) ml.Tensor {
	out := x.ConvTranspose2D(ctx, c.Weight, c.Stride, c.Padding)
	return out.Add(ctx, c.Bias.Reshape(ctx, 1, c.Bias.Dim(0), 1, 1))
}
