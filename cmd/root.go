package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relist-ai/comps-cli/internal/category"
	"github.com/relist-ai/comps-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "comps",
	Short: "Comparable-listing validation and confidence scoring",
	Long:  "Validates marketplace comps against a claimed product identity: per-criterion checks, price outlier detection, category-weighted scoring, set-level filtering, and re-identification hints.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if path := cfg.Engine.WeightOverridesPath; path != "" {
			if err := category.LoadOverrides(path); err != nil {
				return fmt.Errorf("load weight overrides: %w", err)
			}
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
