// cmd_predict.go - Vorhersage ueber den Server
// Hauptfunktionen: PredictHandler, newPredictCmd
package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/videopred/sv2p/api"
)

// PredictHandler - Schickt Kontext-Frames an den Server und speichert
// die vorhergesagten Frames
func PredictHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	horizon, err := cmd.Flags().GetInt("horizon")
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	frames := make([]string, 0, len(args)-1)
	for _, path := range args[1:] {
		bts, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		frames = append(frames, base64.StdEncoding.EncodeToString(bts))
	}

	req := &api.PredictRequest{
		Model:   args[0],
		Frames:  frames,
		Horizon: horizon,
	}

	if req.Actions, err = readVectors(cmd, "actions"); err != nil {
		return err
	}
	if req.States, err = readVectors(cmd, "states"); err != nil {
		return err
	}

	resp, err := client.Predict(cmd.Context(), req)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}

	for i, f := range resp.Frames {
		bts, err := base64.StdEncoding.DecodeString(f)
		if err != nil {
			return err
		}

		path := filepath.Join(output, fmt.Sprintf("pred_%03d.png", i))
		if err := os.WriteFile(path, bts, 0o644); err != nil {
			return err
		}
		fmt.Println(path)
	}

	return nil
}

// readVectors liest eine optionale JSON-Datei mit einem Vektor pro
// Zeitschritt
func readVectors(cmd *cobra.Command, flag string) ([][]float32, error) {
	path, err := cmd.Flags().GetString(flag)
	if err != nil || path == "" {
		return nil, err
	}

	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var vecs [][]float32
	if err := json.Unmarshal(bts, &vecs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vecs, nil
}

func newPredictCmd() *cobra.Command {
	predictCmd := &cobra.Command{
		Use:   "predict MODEL FRAME...",
		Short: "Predict future frames from context frames",
		Args:  cobra.MinimumNArgs(2),
		RunE:  PredictHandler,
	}

	predictCmd.Flags().Int("horizon", 1, "Number of future frames to predict")
	predictCmd.Flags().String("output", ".", "Directory for the predicted frames")
	predictCmd.Flags().String("actions", "", "JSON file with one action vector per step")
	predictCmd.Flags().String("states", "", "JSON file with one state vector per step")

	return predictCmd
}
