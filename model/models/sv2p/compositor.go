// compositor.go - Komposition des naechsten Frames
package sv2p

import (
	"github.com/videopred/sv2p/ml"
)

// genNextRGB komponiert den naechsten Frame als maskierte Summe der
// Quellen: aktueller Frame, transformierter Frame und optional der erste
// Frame der Sequenz (first == nil deaktiviert die dritte Quelle). Die
// Masken muessen softmax-normiert sein; die Komposition ist dann eine
// pixelweise Konvexkombination.
func genNextRGB(ctx ml.Context, masks, rgb, tfm, first ml.Tensor) ml.Tensor {
	slices := masks.Chunk(ctx, 1, 1)

	out := rgb.Mul(ctx, slices[0]).Add(ctx, tfm.Mul(ctx, slices[1]))
	if first != nil {
		out = out.Add(ctx, first.Mul(ctx, slices[2]))
	}

	return out
}
