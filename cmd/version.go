package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leftmike/sqlcoerce/sql"
)

func init() {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of sqlcoerce",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), sql.Version())
			},
		})
}
