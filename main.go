package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/videopred/sv2p/cmd"
)

func main() {
	cobra.CheckErr(cmd.NewCLI().ExecuteContext(context.Background()))
}
