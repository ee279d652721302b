// distribution.go - Diagonale Gauss-Verteilung fuer die Latent-Variable
//
// Dieses Modul enthaelt:
// - ContState: Parameter (Mean, Std) einer diagonalen Gauss-Verteilung
// - unitState: Standard-Prior N(0, I)
// - repeatToBatch/repeatToBatchSeq: Broadcast auf Batch(+Sequenz)-Form
// - sample: Reparametrisiertes Ziehen eines Latent-Codes
// - klDivergence: KL(q || p) zweier diagonaler Gauss-Verteilungen
package sv2p

import (
	"github.com/videopred/sv2p/ml"
)

// ContState sind die Parameter einer diagonalen Gauss-Verteilung
type ContState struct {
	Mean ml.Tensor
	Std  ml.Tensor
}

// unitState erstellt den Standard-Prior N(0, I) der Form [1, latentDim]
func unitState(ctx ml.Context, latentDim int) ContState {
	return ContState{
		Mean: ctx.Zeros(ml.DTypeF32, 1, latentDim),
		Std:  ctx.Ones(ml.DTypeF32, 1, latentDim),
	}
}

// repeatToBatch wiederholt die Parameter auf [batch, latentDim]
func repeatToBatch(ctx ml.Context, st ContState, batch int) ContState {
	return ContState{
		Mean: st.Mean.Repeat(ctx, 0, batch),
		Std:  st.Std.Repeat(ctx, 0, batch),
	}
}

// repeatToBatchSeq wiederholt die Parameter auf [batch, seq, latentDim]
func repeatToBatchSeq(ctx ml.Context, st ContState, batch, seq int) ContState {
	latentDim := st.Mean.Dim(1)
	mean := st.Mean.Reshape(ctx, 1, 1, latentDim).Repeat(ctx, 0, batch).Repeat(ctx, 1, seq)
	std := st.Std.Reshape(ctx, 1, 1, latentDim).Repeat(ctx, 0, batch).Repeat(ctx, 1, seq)
	return ContState{Mean: mean, Std: std}
}

// sample zieht einen Latent-Code per Reparametrisierung: mean + std*eps.
// Der Zufall steckt ausschliesslich in eps, der Code bleibt damit
// differenzierbar bezueglich der Verteilungsparameter.
func sample(ctx ml.Context, st ContState) ml.Tensor {
	eps := ctx.RandNormal(st.Mean.Shape()...)
	return st.Mean.Add(ctx, st.Std.Mul(ctx, eps))
}

// klDivergence berechnet KL(q || p) elementweise, summiert ueber die
// Latent-Dimension und mittelt ueber alle uebrigen Dimensionen
func klDivergence(ctx ml.Context, q, p ContState) float32 {
	// log(pStd/qStd) + (qStd^2 + (qMean-pMean)^2) / (2 pStd^2) - 1/2
	logRatio := p.Std.Div(ctx, q.Std).Log(ctx)
	diff := q.Mean.Sub(ctx, p.Mean)
	num := q.Std.Sqr(ctx).Add(ctx, diff.Sqr(ctx))
	den := p.Std.Sqr(ctx).Scale(ctx, 2)
	kl := logRatio.Add(ctx, num.Div(ctx, den)).AddScalar(ctx, -0.5)

	// Summe ueber Latent-Dimension, Mittel ueber Batch(+Sequenz)
	last := len(kl.Shape()) - 1
	return kl.Sum(ctx, last).Mean(ctx).Floats()[0]
}
