// Package comps implements the set-level comp pipeline: heuristic base
// scoring, image cross-validation, structured validation, and scarcity-aware
// filtering. Every stage is a pure transformation returning enriched copies;
// comps are never mutated in place.
package comps

import (
	"github.com/relist-ai/comps-cli/internal/condition"
	"github.com/relist-ai/comps-cli/internal/model"
	"github.com/relist-ai/comps-cli/internal/textmatch"
)

// Textual boosts layered on top of the match-type base confidence. Match
// types already at or above halfWeightBase carry a verified identity signal,
// so their boosts apply at half weight to avoid inflating an already-strong
// prior.
const (
	boostBrand     = 0.08
	boostModel     = 0.10
	boostCondition = 0.04
	boostVariant   = 0.05

	halfWeightBase   = 0.85
	attrHitThreshold = 0.8
)

// ScoreBase assigns each comp its starting relevance: the match type's fixed
// base confidence plus textual boosts for brand, model, condition and
// variant hits. Deliberately heuristic rather than LLM-scored; structured
// validation follows and does the real work.
func ScoreBase(item model.ItemContext, comps []model.Comp) []model.Comp {
	out := make([]model.Comp, len(comps))
	for i, c := range comps {
		out[i] = scoreOne(item, c)
	}
	return out
}

func scoreOne(item model.ItemContext, comp model.Comp) model.Comp {
	base := comp.MatchType.BaseConfidence()
	comp.BaseConfidence = base

	var boost float64
	if brandHit(item, &comp) {
		boost += boostBrand
	}
	if modelHit(item, &comp) {
		boost += boostModel
	}
	if conditionHit(item, &comp) {
		boost += boostCondition
	}
	if variantHit(item, &comp) {
		boost += boostVariant
	}

	if base >= halfWeightBase {
		boost *= 0.5
	}

	return comp.WithRelevance(base + boost)
}

func brandHit(item model.ItemContext, comp *model.Comp) bool {
	if item.Brand == "" {
		return false
	}
	if textmatch.ContainsNormalized(comp.Title, item.Brand) {
		return true
	}
	attr := comp.Attr(model.AttrBrand)
	return attr != "" && textmatch.Similarity(item.Brand, attr) >= attrHitThreshold
}

func modelHit(item model.ItemContext, comp *model.Comp) bool {
	if item.Model == "" {
		return false
	}
	if textmatch.ContainsNormalized(comp.Title, item.Model) {
		return true
	}
	attr := comp.Attr(model.AttrModel)
	return attr != "" && textmatch.Similarity(item.Model, attr) >= attrHitThreshold
}

func conditionHit(item model.ItemContext, comp *model.Comp) bool {
	if item.Condition == "" || comp.Condition == "" {
		return false
	}
	return condition.Normalize(item.Condition) == condition.Normalize(comp.Condition)
}

// variantHit reports whether any of the item's variant attributes shows up
// in the comp's extracted data or title.
func variantHit(item model.ItemContext, comp *model.Comp) bool {
	v := item.Variant
	if v.Empty() {
		return false
	}

	check := func(key, want string) bool {
		if want == "" {
			return false
		}
		attr := comp.Attr(key)
		if attr != "" && textmatch.Similarity(want, attr) >= attrHitThreshold {
			return true
		}
		return textmatch.ContainsNormalized(comp.Title, want)
	}

	if check(model.AttrColor, v.Color) || check(model.AttrSize, v.Size) || check(model.AttrEdition, v.Edition) {
		return true
	}
	for key, want := range v.Extra {
		if check(key, want) {
			return true
		}
	}
	return false
}
