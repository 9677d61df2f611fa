// Package validate implements per-comp structured validation: five
// independent criterion checks, a population-relative price outlier
// detector, and a category-weighted aggregator producing the validity
// verdict and reasoning attached to each comp.
package validate

import (
	"time"

	"go.uber.org/zap"

	"github.com/relist-ai/comps-cli/internal/category"
	"github.com/relist-ai/comps-cli/internal/config"
	"github.com/relist-ai/comps-cli/internal/model"
)

// Validator runs structured validation over comps. It is a pure function of
// its inputs and config: re-running with the same item, comps, config and
// clock yields bit-identical results.
type Validator struct {
	cfg config.EngineConfig
	now time.Time // injectable for testing
}

// New creates a Validator with the given engine config.
func New(cfg config.EngineConfig) *Validator {
	return &Validator{cfg: cfg, now: time.Now()}
}

// WithNow sets a fixed time for testing.
func (v *Validator) WithNow(t time.Time) *Validator {
	v.now = t
	return v
}

// ValidateComp validates a single comp against the item, using the full
// population for outlier context and the category's weight tables.
func (v *Validator) ValidateComp(item model.ItemContext, comp model.Comp, population []model.Comp, cat category.Category) model.ValidationResult {
	weights := category.Lookup(cat)

	crit := model.Criteria{
		Brand:     validateBrand(item, &comp),
		Model:     validateModel(item, &comp),
		Variant:   validateVariant(item, &comp, weights.Variant),
		Condition: validateCondition(item, &comp),
		Recency:   validateRecency(&comp, v.cfg.RecencyThresholdDays, v.now),
		Price:     detectOutlier(&comp, population, v.cfg.ZScoreThreshold),
	}

	return aggregate(crit, weights.Validation, v.cfg.MinValidationScore, cat)
}

// ValidateAll validates every comp against the full set (each comp's
// outlier check sees the same population) and returns enriched copies with
// a fresh ValidationResult attached. Input comps are not mutated.
func (v *Validator) ValidateAll(item model.ItemContext, comps []model.Comp) []model.Comp {
	if len(comps) == 0 {
		return nil
	}

	cat := category.Resolve(item, comps)
	log := zap.L().With(zap.String("phase", "validate"), zap.String("category", string(cat)))

	out := make([]model.Comp, len(comps))
	for i, comp := range comps {
		result := v.ValidateComp(item, comp, comps, cat)
		comp.Validation = &result
		out[i] = comp
	}

	summary := Summary(out)
	log.Info("structured validation complete",
		zap.Int("total", summary.Total),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Float64("mean_score", summary.Mean),
	)

	return out
}

// Summary tallies verdicts over comps that carry a validation result.
// Passed plus failed always equals the number of validated comps.
func Summary(comps []model.Comp) model.ValidationSummary {
	var s model.ValidationSummary
	var sum float64

	for i := range comps {
		val := comps[i].Validation
		if val == nil {
			continue
		}
		s.Total++
		sum += val.OverallScore
		if val.IsValid {
			s.Passed++
		} else {
			s.Failed++
		}
	}

	if s.Total > 0 {
		s.Mean = sum / float64(s.Total)
	}
	return s
}
