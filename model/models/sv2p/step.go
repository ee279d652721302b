// step.go - Einzelner Vorhersageschritt
package sv2p

import (
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/nn"
)

// rolloutState buendelt die rekurrenten Zustaende aller Teilnetze eines
// Durchlaufs: 4 Encoder-Slots, 1 Fusions-Slot, 2 Decoder-Slots
type rolloutState struct {
	obs *obsState
	act *nn.ConvLSTMState
	msk *maskState
}

// forwardSingleFrame fuehrt einen Vorhersageschritt aus: kodiert rgb,
// fusioniert Aktion/Zustand/Latent, dekodiert Masken und Bewegungskern und
// komponiert den naechsten Frame. st wird in-place fortgeschrieben.
// first ist der erste Frame der Sequenz oder nil, wenn er nicht als
// Kompositionsquelle dient.
func (m *Model) forwardSingleFrame(ctx ml.Context, rgb, act, stt, latent, first ml.Tensor, st *rolloutState) (emb, masks, nxt ml.Tensor) {
	embs, obsNext := m.obs.Forward(ctx, rgb, st.obs)

	fused, actNext := m.fusion.Forward(ctx, embs[3], act, stt, latent, st.act)

	masks, mskNext := m.masks.Forward(ctx, fused, embs, st.msk)
	tfm := m.kernels.Forward(ctx, fused, rgb)

	nxt = genNextRGB(ctx, masks, rgb, tfm, first)

	st.obs, st.act, st.msk = obsNext, actNext, mskNext
	return fused, masks, nxt
}
