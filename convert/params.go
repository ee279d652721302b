// params.go - Hyperparameter aus config.json
package convert

import (
	"encoding/json"
	"fmt"
	"io/fs"

	ofs "github.com/videopred/sv2p/fs"
)

// knownParameters sind die config.json-Schluessel, die in die
// Modell-Konfiguration uebernommen werden
var knownParameters = []string{
	"in_channels",
	"encoder_channels",
	"lstm_kernel",
	"cdna_kernel",
	"action_dim",
	"state_dim",
	"latent_dim",
	"context_frames",
	"act_cond",
	"reuse_first_rgb",
	"time_invariant",
	"stochastic",
	"alpha_rcr",
	"alpha_l",
	"alpha_kl",
	"gen_iters",
}

// loadParameters liest config.json und bildet die Schluessel auf den
// "sv2p."-Namensraum ab; unbekannte Schluessel werden ignoriert
func loadParameters(fsys fs.FS) (ofs.KV, error) {
	bts, err := fs.ReadFile(fsys, "config.json")
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(bts, &raw); err != nil {
		return nil, fmt.Errorf("convert: config.json: %w", err)
	}

	kv := ofs.KV{"general.architecture": "sv2p"}
	for _, key := range knownParameters {
		if v, ok := raw[key]; ok {
			kv["sv2p."+key] = v
		}
	}

	return kv, nil
}
