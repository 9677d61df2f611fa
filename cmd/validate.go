package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relist-ai/comps-cli/internal/comps"
	"github.com/relist-ai/comps-cli/internal/identify"
	"github.com/relist-ai/comps-cli/internal/model"
	"github.com/relist-ai/comps-cli/internal/store"
	"github.com/relist-ai/comps-cli/pkg/vision"
)

// validationInput is the JSON document validate and check consume: the item
// as identified plus its candidate comps from discovery.
type validationInput struct {
	Item  model.ItemContext `json:"item"`
	Comps []model.Comp      `json:"comps"`
}

// validationOutput is what validate emits: the filtered ranked comp set and
// the identification-level verdict.
type validationOutput struct {
	Comps []model.Comp                `json:"comps"`
	Check model.ValidationCheckResult `json:"check"`
}

var validatePersist bool

var validateCmd = &cobra.Command{
	Use:   "validate <input.json>",
	Short: "Run the full comp validation pipeline over a candidate file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		input, err := loadInput(args[0])
		if err != nil {
			return err
		}

		out, err := runValidation(ctx, input)
		if err != nil {
			return err
		}

		if validatePersist {
			if err := persistRun(ctx, input.Item, out); err != nil {
				return err
			}
		}

		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validatePersist, "store", false, "persist the run to the configured store")
	rootCmd.AddCommand(validateCmd)
}

func loadInput(path string) (*validationInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read input file")
	}
	var input validationInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, eris.Wrap(err, "parse input file")
	}
	return &input, nil
}

// runValidation executes the pipeline and the identification check with the
// configured engine thresholds.
func runValidation(ctx context.Context, input *validationInput) (*validationOutput, error) {
	var visionClient vision.Client
	if cfg.Vision.Key != "" {
		visionClient = vision.NewClient(cfg.Vision.Key, cfg.Vision.Model, cfg.Vision.RatePerSecond)
	}

	pipeline := comps.New(cfg.Engine, visionClient)
	filtered, err := pipeline.Run(ctx, input.Item, input.Comps)
	if err != nil {
		return nil, err
	}

	check := identify.NewChecker(cfg.Engine).Check(input.Item, filtered)
	return &validationOutput{Comps: filtered, Check: check}, nil
}

func persistRun(ctx context.Context, item model.ItemContext, out *validationOutput) error {
	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if s == nil {
		return eris.New("no store configured: set store.driver")
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		return err
	}
	run, err := s.CreateRun(ctx, item, out.Comps, &out.Check)
	if err != nil {
		return err
	}
	zap.L().Info("run persisted", zap.String("run_id", run.ID))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
