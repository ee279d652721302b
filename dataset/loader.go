// loader.go - Batch-Erzeugung mit paralleler Dekodierung
package dataset

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/videopred/sv2p/logutil"
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/model/input"
)

// Loader iteriert in Batches ueber einen Datensatz
type Loader struct {
	d         *Dataset
	batchSize int

	order []int
	pos   int
}

// Loader erstellt einen Batch-Iterator; unvollstaendige Rest-Batches
// werden verworfen, damit alle Batches dieselbe Groesse haben
func (d *Dataset) Loader(batchSize int) *Loader {
	if batchSize < 1 {
		batchSize = 1
	}

	order := make([]int, d.Len())
	for i := range order {
		order[i] = i
	}

	return &Loader{d: d, batchSize: batchSize, order: order}
}

// Shuffle mischt die Sequenz-Reihenfolge deterministisch und setzt die
// Iteration zurueck
func (l *Loader) Shuffle(seed int64) {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)+1))
	rng.Shuffle(len(l.order), func(i, j int) {
		l.order[i], l.order[j] = l.order[j], l.order[i]
	})
	l.pos = 0
}

// Reset setzt die Iteration auf den Anfang zurueck
func (l *Loader) Reset() {
	l.pos = 0
}

// Batches gibt die Anzahl vollstaendiger Batches pro Durchlauf zurueck
func (l *Loader) Batches() int {
	return len(l.order) / l.batchSize
}

// Next laedt den naechsten Batch; am Ende des Durchlaufs kommt io.EOF.
// Die Frames aller Sequenzen werden parallel dekodiert.
func (l *Loader) Next(ctx context.Context, mlctx ml.Context) (input.Batch, error) {
	if l.pos+l.batchSize > len(l.order) {
		return input.Batch{}, io.EOF
	}

	idx := l.order[l.pos : l.pos+l.batchSize]
	l.pos += l.batchSize

	opts := l.d.opts
	frameSize := 3 * opts.Height * opts.Width
	rgb := make([]float32, l.batchSize*opts.SeqLen*frameSize)

	g, ctx := errgroup.WithContext(ctx)
	for b, si := range idx {
		seq := l.d.seqs[si]
		for s, path := range seq.Frames {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				pix, err := loadFrame(path, opts.Height, opts.Width)
				if err != nil {
					return err
				}
				copy(rgb[(b*opts.SeqLen+s)*frameSize:], pix)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return input.Batch{}, err
	}

	logutil.TraceContext(ctx, "batch loaded", "sequences", len(idx), "frames", l.batchSize*opts.SeqLen)

	batch := input.Batch{
		RGB: mlctx.FromFloats(rgb, l.batchSize, opts.SeqLen, 3, opts.Height, opts.Width),
	}

	var err error
	if batch.Actions, err = l.vectors(mlctx, idx, "actions"); err != nil {
		return input.Batch{}, err
	}
	if batch.States, err = l.vectors(mlctx, idx, "states"); err != nil {
		return input.Batch{}, err
	}

	return batch, nil
}

// vectors stapelt Aktions- oder Zustandsvektoren zu [B, S-1, D]; traegt
// die erste Sequenz keine, duerfen es die anderen auch nicht
func (l *Loader) vectors(mlctx ml.Context, idx []int, kind string) (ml.Tensor, error) {
	pick := func(seq Sequence) [][]float32 {
		if kind == "actions" {
			return seq.Actions
		}
		return seq.States
	}

	first := pick(l.d.seqs[idx[0]])
	if first == nil {
		return nil, nil
	}

	steps, dim := len(first), len(first[0])
	data := make([]float32, 0, len(idx)*steps*dim)

	for _, si := range idx {
		vecs := pick(l.d.seqs[si])
		if len(vecs) != steps {
			return nil, fmt.Errorf("dataset: %s missing %s", l.d.seqs[si].Dir, kind)
		}
		for _, v := range vecs {
			if len(v) != dim {
				return nil, fmt.Errorf("dataset: %s has inconsistent %s dimension", l.d.seqs[si].Dir, kind)
			}
			data = append(data, v...)
		}
	}

	return mlctx.FromFloats(data, len(idx), steps, dim), nil
}
