// cmd_train.go - Lokales Training eines frischen Modells
// Hauptfunktionen: TrainHandler, newTrainCmd
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/videopred/sv2p/dataset"
	"github.com/videopred/sv2p/envconfig"
	"github.com/videopred/sv2p/fs"
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/ml/backend/native"
	"github.com/videopred/sv2p/model"
	"github.com/videopred/sv2p/train"

	_ "github.com/videopred/sv2p/model/models/sv2p"
)

// TrainHandler - Initialisiert ein Modell aus den Flags und trainiert
// es auf einem Datensatz
func TrainHandler(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	out, err := flags.GetString("out")
	if err != nil {
		return err
	}
	if out == "" {
		return errors.New("--out is required")
	}

	seqLen, _ := flags.GetInt("seq-len")
	batchSize, _ := flags.GetInt("batch-size")
	height, _ := flags.GetInt("height")
	width, _ := flags.GetInt("width")
	epochs, _ := flags.GetInt("epochs")
	contextLen, _ := flags.GetInt("context-frames")
	latentDim, _ := flags.GetInt("latent-dim")
	actionDim, _ := flags.GetInt("action-dim")
	stateDim, _ := flags.GetInt("state-dim")
	stochastic, _ := flags.GetBool("stochastic")
	klTarget, _ := flags.GetFloat32("kl-target")
	klSteps, _ := flags.GetInt("kl-anneal-steps")
	genIters, _ := flags.GetInt("gen-iters")
	optName, _ := flags.GetString("optimizer")
	valRoot, _ := flags.GetString("val")

	config := fs.KV{
		"general.architecture": "sv2p",
		"sv2p.context_frames":  uint32(contextLen),
		"sv2p.latent_dim":      uint32(latentDim),
		"sv2p.stochastic":      stochastic,
		"sv2p.gen_iters":       uint32(genIters),
	}
	if actionDim > 0 {
		config["sv2p.action_dim"] = uint32(actionDim)
		config["sv2p.act_cond"] = true
	}
	if stateDim > 0 {
		config["sv2p.state_dim"] = uint32(stateDim)
	}

	b := native.NewFromConfig(config, ml.BackendParams{
		NumThreads: envconfig.NumThreads(),
		Seed:       envconfig.Seed(),
	})

	m, err := model.FromBackend(b)
	if err != nil {
		return err
	}

	p, ok := m.(train.Predictor)
	if !ok {
		return fmt.Errorf("architecture %q is not trainable", config["general.architecture"])
	}

	var opt train.Optimizer
	if optName != "" {
		if opt, err = train.NewOptimizer(optName, b); err != nil {
			return err
		}
	}

	opts := dataset.Options{SeqLen: seqLen, Height: height, Width: width}
	d, err := dataset.Open(args[0], opts)
	if err != nil {
		return err
	}

	var val *dataset.Loader
	if valRoot != "" {
		v, err := dataset.Open(valRoot, opts)
		if err != nil {
			return err
		}
		val = v.Loader(batchSize)
	}

	t := train.New(p, opt, nil, train.Config{
		Epochs:         epochs,
		Seed:           envconfig.Seed(),
		KLTarget:       klTarget,
		KLAnnealSteps:  klSteps,
		CheckpointPath: out,
	})

	return t.Run(cmd.Context(), d.Loader(batchSize), val)
}

func newTrainCmd() *cobra.Command {
	trainCmd := &cobra.Command{
		Use:   "train DATASET",
		Short: "Train a model on a dataset of frame sequences",
		Args:  cobra.ExactArgs(1),
		RunE:  TrainHandler,
	}

	trainCmd.Flags().String("out", "", "Checkpoint path (required)")
	trainCmd.Flags().String("val", "", "Validation dataset directory")
	trainCmd.Flags().Int("epochs", 1, "Number of training epochs")
	trainCmd.Flags().Int("batch-size", 4, "Sequences per batch")
	trainCmd.Flags().Int("seq-len", 10, "Frames per sequence")
	trainCmd.Flags().Int("height", 64, "Frame height")
	trainCmd.Flags().Int("width", 64, "Frame width")
	trainCmd.Flags().Int("context-frames", 2, "Ground-truth frames before sampling kicks in")
	trainCmd.Flags().Int("latent-dim", 8, "Size of the stochastic latent vector")
	trainCmd.Flags().Int("action-dim", 0, "Size of the action vectors, 0 disables action conditioning")
	trainCmd.Flags().Int("state-dim", 0, "Size of the state vectors")
	trainCmd.Flags().Bool("stochastic", false, "Train with a stochastic latent")
	trainCmd.Flags().Float32("kl-target", 1e-3, "Final KL weight")
	trainCmd.Flags().Int("kl-anneal-steps", 0, "Steps over which the KL weight ramps up")
	trainCmd.Flags().Int("gen-iters", 0, "Steps before scheduled sampling and KL annealing start")
	trainCmd.Flags().String("optimizer", "", "Registered optimizer name, empty runs forward only")

	return trainCmd
}
