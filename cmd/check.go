package main

import (
	"github.com/spf13/cobra"

	"github.com/relist-ai/comps-cli/internal/identify"
)

var checkCmd = &cobra.Command{
	Use:   "check <input.json>",
	Short: "Run only the identification re-validation checks over a comp file",
	Long:  "Cross-checks already-scored comps against the claimed identity without re-running the scoring pipeline. Useful for inspecting trigger behavior on persisted comp sets.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := loadInput(args[0])
		if err != nil {
			return err
		}

		result := identify.NewChecker(cfg.Engine).Check(input.Item, input.Comps)
		return writeJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
