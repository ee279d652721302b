// image.go - Frame-Dekodierung, -Kodierung und Normalisierung
package dataset

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	// Standard-Decoder registrieren
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeFrame dekodiert ein Bild, skaliert auf height x width und gibt
// die Pixel als CHW-float32 in [-1, 1] zurueck
func DecodeFrame(r io.Reader, height, width int) ([]float32, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: decode frame: %w", err)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)

	out := make([]float32, 3*height*width)
	plane := height * width
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := rgba.PixOffset(x, y)
			p := y*width + x
			out[p] = float32(rgba.Pix[i])/127.5 - 1
			out[plane+p] = float32(rgba.Pix[i+1])/127.5 - 1
			out[2*plane+p] = float32(rgba.Pix[i+2])/127.5 - 1
		}
	}

	return out, nil
}

// EncodePNG kodiert einen CHW-float32-Frame in [-1, 1] als PNG
func EncodePNG(pix []float32, height, width int) ([]byte, error) {
	if len(pix) != 3*height*width {
		return nil, fmt.Errorf("dataset: frame has %d values for %dx%d", len(pix), height, width)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	plane := height * width
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := img.PixOffset(x, y)
			p := y*width + x
			img.Pix[i] = quantize(pix[p])
			img.Pix[i+1] = quantize(pix[plane+p])
			img.Pix[i+2] = quantize(pix[2*plane+p])
			img.Pix[i+3] = 255
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// quantize bildet [-1, 1] auf [0, 255] ab
func quantize(v float32) uint8 {
	u := (v + 1) * 127.5
	switch {
	case u < 0:
		return 0
	case u > 255:
		return 255
	}
	return uint8(u + 0.5)
}

// loadFrame laedt ein Bild von der Platte
func loadFrame(path string, height, width int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	return DecodeFrame(f, height, width)
}
