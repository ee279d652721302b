// cmd_convert.go - Konvertierung fremder Checkpoints
// Hauptfunktionen: ConvertHandler, newConvertCmd
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/videopred/sv2p/convert"
)

// ConvertHandler - Wandelt einen safetensors- oder pytorch-Checkpoint
// in das svtf-Format um
func ConvertHandler(cmd *cobra.Command, args []string) error {
	if err := convert.Convert(os.DirFS(args[0]), args[1]); err != nil {
		return err
	}

	fmt.Println(args[1])
	return nil
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert DIR OUTPUT",
		Short: "Convert a checkpoint directory to the svtf format",
		Args:  cobra.ExactArgs(2),
		RunE:  ConvertHandler,
	}
}
