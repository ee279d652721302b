// options.go - Konfiguration des SV2P-Modells
package sv2p

import (
	"fmt"

	"github.com/videopred/sv2p/fs"
)

// Options enthaelt die Modell-Konfiguration. Alle Werte stehen vor der
// Konstruktion der Teilnetze fest; insbesondere ist die Masken-Anzahl hier
// berechnet und wird nie nachtraeglich veraendert.
type Options struct {
	inChannels  int
	channels    []int
	lstmKernel  int
	cdnaKernel  int
	actionDim   int
	stateDim    int
	latentDim   int
	contextLen  int
	actCond     bool
	reuseFirst  bool
	timeInvar   bool
	stochastic  bool
	numMasks    int
	alphaRcr    float32
	alphaL      int
	klBeta      float32
	genIters    int
}

// newOptions liest die Konfiguration; fehlende Keys erhalten Defaults
func newOptions(c fs.Config) (*Options, error) {
	channels := c.Uints("sv2p.encoder_channels", []uint32{16, 32, 64, 64})
	if len(channels) != 4 {
		return nil, fmt.Errorf("sv2p: encoder_channels must have 4 entries, got %d", len(channels))
	}

	o := &Options{
		inChannels: int(c.Uint("sv2p.in_channels", 3)),
		channels:   []int{int(channels[0]), int(channels[1]), int(channels[2]), int(channels[3])},
		lstmKernel: int(c.Uint("sv2p.lstm_kernel", 5)),
		cdnaKernel: int(c.Uint("sv2p.cdna_kernel", 5)),
		actionDim:  int(c.Uint("sv2p.action_dim", 0)),
		stateDim:   int(c.Uint("sv2p.state_dim", 0)),
		latentDim:  int(c.Uint("sv2p.latent_dim", 8)),
		contextLen: int(c.Uint("sv2p.context_frames", 1)),
		actCond:    c.Bool("sv2p.act_cond", false),
		reuseFirst: c.Bool("sv2p.reuse_first_rgb", false),
		timeInvar:  c.Bool("sv2p.time_invariant", true),
		stochastic: c.Bool("sv2p.stochastic", false),
		alphaRcr:   c.Float("sv2p.alpha_rcr", 1.0),
		alphaL:     int(c.Uint("sv2p.alpha_l", 1)),
		klBeta:     c.Float("sv2p.alpha_kl", 1e-3),
		genIters:   int(c.Uint("sv2p.gen_iters", 0)),
	}

	// Quellen der Komposition: aktueller Frame und transformierter Frame,
	// plus optional der erste Frame der Sequenz
	o.numMasks = 2
	if o.reuseFirst {
		o.numMasks++
	}

	if o.contextLen < 1 {
		return nil, fmt.Errorf("sv2p: context_frames must be at least 1, got %d", o.contextLen)
	}
	if o.actCond && o.actionDim < 1 {
		return nil, fmt.Errorf("sv2p: act_cond requires action_dim > 0")
	}
	if o.stochastic && o.latentDim < 1 {
		return nil, fmt.Errorf("sv2p: stochastic requires latent_dim > 0")
	}
	if o.lstmKernel%2 == 0 || o.cdnaKernel%2 == 0 {
		return nil, fmt.Errorf("sv2p: kernel sizes must be odd")
	}

	return o, nil
}

// GenIters gibt die Anzahl der Trainingsschritte zurueck, nach denen die
// Posterior-Ableitung aktiviert wird
func (o *Options) GenIters() int {
	return o.genIters
}

// Stochastic gibt zurueck, ob das Modell eine Latent-Variable traegt
func (o *Options) Stochastic() bool {
	return o.stochastic
}
