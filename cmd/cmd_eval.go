// cmd_eval.go - Evaluation ueber den Server
// Hauptfunktionen: EvalHandler, newEvalCmd
package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/videopred/sv2p/api"
)

// EvalHandler - Vermisst ein Modell auf einem Datensatz und zeigt die
// Metriken als Tabelle
func EvalHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	req := &api.MetricsRequest{Model: args[0], Dataset: args[1]}
	if req.SeqLen, err = cmd.Flags().GetInt("seq-len"); err != nil {
		return err
	}
	if req.BatchSize, err = cmd.Flags().GetInt("batch-size"); err != nil {
		return err
	}
	if req.Height, err = cmd.Flags().GetInt("height"); err != nil {
		return err
	}
	if req.Width, err = cmd.Flags().GetInt("width"); err != nil {
		return err
	}

	resp, err := client.Metrics(cmd.Context(), req)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(resp.Scores))
	for k := range resp.Scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data [][]string
	for _, k := range keys {
		data = append(data, []string{k, fmt.Sprintf("%.4f", resp.Scores[k])})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"METRIC", "VALUE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

func newEvalCmd() *cobra.Command {
	evalCmd := &cobra.Command{
		Use:   "eval MODEL DATASET",
		Short: "Evaluate a model on a dataset",
		Args:  cobra.ExactArgs(2),
		RunE:  EvalHandler,
	}

	evalCmd.Flags().Int("seq-len", 10, "Frames per sequence")
	evalCmd.Flags().Int("batch-size", 4, "Sequences per batch")
	evalCmd.Flags().Int("height", 64, "Frame height")
	evalCmd.Flags().Int("width", 64, "Frame width")

	return evalCmd
}
