// convlstm.go - Faltungs-LSTM-Zelle
//
// Die rekurrente Einheit aller Teilnetze des Vorhersagemodells. Der Zustand
// wird explizit durch den Aufrufer gereicht; nil bedeutet "frisch" und wird
// als Null-Zustand in der Groesse der Eingabe behandelt.
package nn

import (
	"github.com/videopred/sv2p/ml"
)

// ConvLSTMState ist der rekurrente Zustand einer Zelle
type ConvLSTMState struct {
	H ml.Tensor
	C ml.Tensor
}

// ConvLSTM ist eine Faltungs-LSTM-Zelle mit gemeinsamer Gate-Faltung
type ConvLSTM struct {
	Gates *Conv2D

	hidden int
}

// NewConvLSTM erstellt eine Zelle; die Gate-Faltung sieht Eingabe und
// Hidden-State konkateniert und produziert alle vier Gates auf einmal
func NewConvLSTM(ctx ml.Context, b ml.Backend, name string, in, hidden, kernel int) *ConvLSTM {
	return &ConvLSTM{
		Gates:  NewConv2D(ctx, b, name+".gates", in+hidden, 4*hidden, kernel, 1, kernel/2),
		hidden: hidden,
	}
}

// Hidden gibt die Anzahl der Hidden-Kanaele zurueck
func (m *ConvLSTM) Hidden() int {
	return m.hidden
}

// Forward verarbeitet x der Form [B, in, H, W] mit dem Zustand state
// (nil = frisch) und gibt Ausgabe und neuen Zustand zurueck
func (m *ConvLSTM) Forward(ctx ml.Context, x ml.Tensor, state *ConvLSTMState) (ml.Tensor, *ConvLSTMState) {
	batch, height, width := x.Dim(0), x.Dim(2), x.Dim(3)

	var h, c ml.Tensor
	if state == nil {
		h = ctx.Zeros(ml.DTypeF32, batch, m.hidden, height, width)
		c = ctx.Zeros(ml.DTypeF32, batch, m.hidden, height, width)
	} else {
		h, c = state.H, state.C
	}

	gates := m.Gates.Forward(ctx, x.Concat(ctx, h, 1))
	chunks := gates.Chunk(ctx, 1, m.hidden)

	i := chunks[0].Sigmoid(ctx)
	// Forget-Bias von 1 haelt die Zelle anfangs offen
	f := chunks[1].AddScalar(ctx, 1).Sigmoid(ctx)
	g := chunks[2].Tanh(ctx)
	o := chunks[3].Sigmoid(ctx)

	cNext := f.Mul(ctx, c).Add(ctx, i.Mul(ctx, g))
	hNext := o.Mul(ctx, cNext.Tanh(ctx))

	return hNext, &ConvLSTMState{H: hNext, C: cNext}
}
