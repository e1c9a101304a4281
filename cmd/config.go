package cmd

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "config",
			Short: "List the config variables and how each was set",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				tw := tablewriter.NewWriter(cmd.OutOrStdout())
				tw.SetAutoFormatHeaders(false)
				tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
				tw.SetAlignment(tablewriter.ALIGN_LEFT)
				tw.SetHeader([]string{"name", "value", "set by"})
				cfg.List(
					func(name, val, by string) {
						tw.Append([]string{name, val, by})
					})
				tw.Render()
			},
		})
}
