package comps

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/relist-ai/comps-cli/internal/config"
	"github.com/relist-ai/comps-cli/internal/model"
	"github.com/relist-ai/comps-cli/internal/validate"
	"github.com/relist-ai/comps-cli/pkg/vision"
)

// Pipeline chains the four comp-set stages: base scoring, image
// cross-validation, structured validation, scarcity-aware filtering. The
// vision client may be nil, in which case the image stage is skipped.
type Pipeline struct {
	cfg       config.EngineConfig
	vision    vision.Client
	validator *validate.Validator
}

// New creates a Pipeline with the given engine config and optional vision
// client.
func New(cfg config.EngineConfig, visionClient vision.Client) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		vision:    visionClient,
		validator: validate.New(cfg),
	}
}

// WithNow sets a fixed clock for recency checks, for testing.
func (p *Pipeline) WithNow(t time.Time) *Pipeline {
	p.validator = p.validator.WithNow(t)
	return p
}

// Run takes raw candidate comps and returns the filtered, ranked comp set
// with relevance and validation populated, ready for downstream price-band
// calculation. Input comps are not mutated.
func (p *Pipeline) Run(ctx context.Context, item model.ItemContext, candidates []model.Comp) ([]model.Comp, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	log := zap.L().With(zap.String("phase", "comps"))

	scored := ScoreBase(item, candidates)

	checked, err := CrossValidateImages(ctx, p.vision, item, scored, p.cfg)
	if err != nil {
		return nil, eris.Wrap(err, "comps: pipeline")
	}

	validated := p.validator.ValidateAll(item, checked)
	final := Filter(validated, p.cfg)

	log.Info("comp pipeline complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("kept", len(final)),
	)
	return final, nil
}
