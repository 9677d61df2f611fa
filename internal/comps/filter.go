package comps

import (
	"sort"

	"go.uber.org/zap"

	"github.com/relist-ai/comps-cli/internal/config"
	"github.com/relist-ai/comps-cli/internal/model"
)

// effectiveScore blends relevance with structured validation: once a comp
// has been validated, its overall validation score is the score that
// matters; unvalidated comps fall back to their heuristic relevance.
func effectiveScore(c *model.Comp) float64 {
	if c.Validation != nil {
		return c.Validation.OverallScore
	}
	return c.RelevanceScore
}

// Filter applies the scarcity-aware set filter: comps at or above the
// validated threshold are kept at full weight. When fewer than
// MinValidatedComps clear that bar, comps in the marginal band are also
// kept, at a discount and flagged, so sparse-data items still get pricing
// signal instead of an empty comp set. The result is sorted by score,
// descending.
func Filter(comps []model.Comp, cfg config.EngineConfig) []model.Comp {
	var kept, marginal []model.Comp

	for _, c := range comps {
		score := effectiveScore(&c)
		switch {
		case score >= cfg.ValidatedThreshold:
			kept = append(kept, c.WithRelevance(score))
		case score >= cfg.MarginalFloor:
			m := c.WithRelevance(score * cfg.MarginalDiscount)
			m.MarginalDiscounted = true
			marginal = append(marginal, m)
		}
	}

	if len(kept) < cfg.MinValidatedComps && len(marginal) > 0 {
		zap.L().Info("scarcity relaxation active",
			zap.String("phase", "filter"),
			zap.Int("validated", len(kept)),
			zap.Int("marginal_kept", len(marginal)),
		)
		kept = append(kept, marginal...)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	return kept
}
