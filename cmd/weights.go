package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/relist-ai/comps-cli/internal/category"
)

var weightsCmd = &cobra.Command{
	Use:   "weights [category]",
	Short: "Print the effective per-category validation weights",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return writeJSON(cmd.OutOrStdout(), category.All())
		}

		c := category.Category(args[0])
		all := category.All()
		w, ok := all[c]
		if !ok {
			return eris.Errorf("unknown category %q", args[0])
		}
		return writeJSON(cmd.OutOrStdout(), w)
	},
}

func init() {
	rootCmd.AddCommand(weightsCmd)
}
