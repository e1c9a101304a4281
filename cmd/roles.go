package cmd

import (
	"github.com/spf13/cobra"

	"github.com/leftmike/sqlcoerce/repl"
)

func init() {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "roles",
			Short: "List the roles and the roles they refine",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				repl.PrintRoles(cmd.OutOrStdout())
			},
		})
}
