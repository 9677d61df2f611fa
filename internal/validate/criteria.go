package validate

import (
	"sort"
	"time"

	"github.com/relist-ai/comps-cli/internal/category"
	"github.com/relist-ai/comps-cli/internal/condition"
	"github.com/relist-ai/comps-cli/internal/model"
	"github.com/relist-ai/comps-cli/internal/textmatch"
)

const (
	// benefitOfDoubtConfidence is the confidence assigned when the item
	// attribute being checked is unknown. Low but non-zero, so a single
	// missing attribute never disqualifies an under-specified item.
	benefitOfDoubtConfidence = 0.3

	// brandMatchThreshold is the similarity at which two brands count as
	// the same brand.
	brandMatchThreshold = 0.8

	// modelMatchThreshold is the similarity at which two model strings
	// count as the same model.
	modelMatchThreshold = 0.7

	// modelTitleFloor is the minimum similarity credited when the item's
	// model string appears verbatim in the comp title.
	modelTitleFloor = 0.85

	// variantAttrThreshold is the similarity at which a variant attribute
	// counts as matched against the comp's structured field.
	variantAttrThreshold = 0.8

	// variantTitleFactor discounts a variant attribute matched only via
	// title substring rather than a structured field.
	variantTitleFactor = 0.8

	// variantMatchThreshold is the matched-weight fraction at which the
	// variant criterion passes overall.
	variantMatchThreshold = 0.5

	// conditionGradeTolerance is the largest grade distance that still
	// counts as a condition match.
	conditionGradeTolerance = 2

	// conditionDistancePenalty reduces condition confidence per grade of
	// distance.
	conditionDistancePenalty = 0.15

	// soldNoDateConfidence applies to sold listings missing a sold date:
	// valid, but weaker evidence than a dated sale.
	soldNoDateConfidence = 0.6
)

// validateBrand checks the item brand against the comp. Unknown item brand
// gets the benefit of the doubt; a comp with no structured brand attribute
// is checked against the first token of its title.
func validateBrand(item model.ItemContext, comp *model.Comp) model.CriterionResult {
	if item.Brand == "" {
		return model.CriterionResult{Matches: true, Confidence: benefitOfDoubtConfidence}
	}

	compBrand := comp.Attr(model.AttrBrand)
	if compBrand == "" {
		compBrand = textmatch.FirstToken(comp.Title)
	}
	if compBrand == "" {
		return model.CriterionResult{Matches: true, Confidence: benefitOfDoubtConfidence}
	}

	sim := textmatch.Similarity(item.Brand, compBrand)
	return model.CriterionResult{Matches: sim >= brandMatchThreshold, Confidence: sim}
}

// validateModel checks the item model against the comp's structured model
// field, falling back to a title substring check. A verbatim title hit
// forces similarity to at least the title floor.
func validateModel(item model.ItemContext, comp *model.Comp) model.CriterionResult {
	if item.Model == "" {
		return model.CriterionResult{Matches: true, Confidence: benefitOfDoubtConfidence}
	}

	sim := 0.0
	if compModel := comp.Attr(model.AttrModel); compModel != "" {
		sim = textmatch.Similarity(item.Model, compModel)
	}
	if sim < modelMatchThreshold && textmatch.ContainsNormalized(comp.Title, item.Model) {
		if sim < modelTitleFloor {
			sim = modelTitleFloor
		}
	}

	return model.CriterionResult{Matches: sim >= modelMatchThreshold, Confidence: sim}
}

// variantAttr is one item variant attribute to check against the comp.
type variantAttr struct {
	key   string
	value string
}

// itemVariantAttrs collects the item's present variant attributes in a
// deterministic order.
func itemVariantAttrs(item model.ItemContext) []variantAttr {
	var attrs []variantAttr
	if item.Variant.Color != "" {
		attrs = append(attrs, variantAttr{model.AttrColor, item.Variant.Color})
	}
	if item.Variant.Size != "" {
		attrs = append(attrs, variantAttr{model.AttrSize, item.Variant.Size})
	}
	if item.Variant.Edition != "" {
		attrs = append(attrs, variantAttr{model.AttrEdition, item.Variant.Edition})
	}

	extraKeys := make([]string, 0, len(item.Variant.Extra))
	for k := range item.Variant.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		if v := item.Variant.Extra[k]; v != "" {
			attrs = append(attrs, variantAttr{k, v})
		}
	}
	return attrs
}

// validateVariant combines the item's variant sub-attributes under
// category-specific importance weights. Each present attribute contributes
// its weight to the total; a structured-field match contributes the full
// weight to the matched sum and a title-substring hit contributes at a
// discount. An item with no variant attributes trivially passes: there is
// nothing to contradict.
func validateVariant(item model.ItemContext, comp *model.Comp, weights category.VariantWeights) model.CriterionResult {
	attrs := itemVariantAttrs(item)
	if len(attrs) == 0 {
		return model.CriterionResult{Matches: true, Confidence: 1.0}
	}

	var total, matched float64
	for _, a := range attrs {
		w := weights.For(a.key)
		if w <= 0 {
			continue
		}
		total += w

		compVal := comp.Attr(a.key)
		if a.key == model.AttrColor && compVal == "" {
			compVal = comp.Attr(model.AttrColorway)
		}

		switch {
		case compVal != "" && textmatch.Similarity(a.value, compVal) >= variantAttrThreshold:
			matched += w
		case textmatch.ContainsNormalized(comp.Title, a.value):
			matched += w * variantTitleFactor
		}
	}

	if total == 0 {
		return model.CriterionResult{Matches: true, Confidence: 1.0}
	}

	conf := matched / total
	return model.CriterionResult{Matches: conf >= variantMatchThreshold, Confidence: conf}
}

// validateCondition compares condition grades. Within two grades counts as
// a match; unknown item condition is a trivial pass with zero distance.
func validateCondition(item model.ItemContext, comp *model.Comp) model.ConditionResult {
	if item.Condition == "" {
		return model.ConditionResult{
			CriterionResult: model.CriterionResult{Matches: true, Confidence: 1.0},
			WithinGrade:     0,
		}
	}

	itemGrade := condition.Normalize(item.Condition)
	compGrade := condition.Normalize(comp.Condition)
	dist := condition.Distance(itemGrade, compGrade)

	conf := 1.0 - conditionDistancePenalty*float64(dist)
	if conf < 0 {
		conf = 0
	}

	return model.ConditionResult{
		CriterionResult: model.CriterionResult{Matches: dist <= conditionGradeTolerance, Confidence: conf},
		WithinGrade:     dist,
	}
}

// validateRecency judges how fresh a sold comp's price signal is. Active
// listings are always current. Sold listings without a sold date get the
// benefit of the doubt.
func validateRecency(comp *model.Comp, thresholdDays int, now time.Time) model.RecencyResult {
	if comp.Type == model.ListingActive {
		return model.RecencyResult{
			CriterionResult: model.CriterionResult{Matches: true, Confidence: 1.0},
			ThresholdDays:   thresholdDays,
		}
	}

	if comp.SoldDate == nil {
		return model.RecencyResult{
			CriterionResult: model.CriterionResult{Matches: true, Confidence: soldNoDateConfidence},
			ThresholdDays:   thresholdDays,
		}
	}

	days := int(now.Sub(*comp.SoldDate).Hours() / 24)
	if days < 0 {
		days = 0
	}

	// Confidence decays linearly, reaching zero at twice the threshold.
	conf := model.Clamp01(1.0 - float64(days)/float64(2*thresholdDays))

	return model.RecencyResult{
		CriterionResult: model.CriterionResult{Matches: days <= thresholdDays, Confidence: conf},
		DaysSinceSold:   &days,
		ThresholdDays:   thresholdDays,
	}
}
