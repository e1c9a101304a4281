package cmd

import (
	"github.com/spf13/cobra"

	"github.com/leftmike/sqlcoerce/repl"
)

var (
	replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Run an interactive console session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			repl.Interact(repl.NewSession(coercer))
		},
	}
)

func init() {
	rootCmd.AddCommand(replCmd)
}
