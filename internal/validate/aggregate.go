package validate

import (
	"fmt"
	"strings"

	"github.com/relist-ai/comps-cli/internal/category"
	"github.com/relist-ai/comps-cli/internal/model"
)

// conditionGradeDiscount reduces the condition term by 20% per grade of
// distance before weighting, floored at zero.
const conditionGradeDiscount = 0.2

// aggregate combines the five criterion results under category weights into
// an overall score, verdict and reasoning string. Matching criteria
// contribute confidence×weight; the condition term is additionally
// discounted per grade of distance; the price-outlier term is the only one
// that can subtract. The weighted sum can exceed 1 before clamping — the
// clamp-at-end behavior is part of the contract the weight tables were
// tuned against.
func aggregate(crit model.Criteria, weights category.ValidationWeights, minScore float64, cat category.Category) model.ValidationResult {
	var score float64

	if crit.Brand.Matches {
		score += crit.Brand.Confidence * weights.Brand
	}
	if crit.Model.Matches {
		score += crit.Model.Confidence * weights.Model
	}
	if crit.Variant.Matches {
		score += crit.Variant.Confidence * weights.Variant
	}
	if crit.Condition.Matches {
		discount := 1.0 - conditionGradeDiscount*float64(crit.Condition.WithinGrade)
		if discount < 0 {
			discount = 0
		}
		score += crit.Condition.Confidence * discount * weights.Condition
	}
	if crit.Recency.Matches {
		score += crit.Recency.Confidence * weights.Recency
	}

	if crit.Price.IsOutlier {
		score -= weights.PriceOutlier
	} else {
		score += crit.Price.Confidence * weights.PriceOutlier
	}

	score = model.Clamp01(score)

	return model.ValidationResult{
		IsValid:      score >= minScore,
		OverallScore: score,
		Criteria:     crit,
		Reasoning:    buildReasoning(crit),
		Category:     string(cat),
	}
}

// buildReasoning produces the ordered human-readable explanation attached
// to every validation result. The string is an audit contract consumed
// downstream: the presence of "mismatch" and "outlier" substrings is relied
// upon, so phrasing changes here are breaking changes.
func buildReasoning(crit model.Criteria) string {
	parts := make([]string, 0, 6)

	parts = append(parts, criterionPhrase("brand", crit.Brand))
	parts = append(parts, criterionPhrase("model", crit.Model))
	parts = append(parts, variantPhrase(crit.Variant))
	parts = append(parts, conditionPhrase(crit.Condition))
	parts = append(parts, recencyPhrase(crit.Recency))
	parts = append(parts, pricePhrase(crit.Price))

	return strings.Join(parts, "; ")
}

func criterionPhrase(name string, r model.CriterionResult) string {
	if r.Matches && r.Confidence == benefitOfDoubtConfidence {
		return fmt.Sprintf("%s unknown, benefit of the doubt", name)
	}
	if r.Matches {
		return fmt.Sprintf("%s match (%.2f)", name, r.Confidence)
	}
	return fmt.Sprintf("%s mismatch (%.2f)", name, r.Confidence)
}

func variantPhrase(r model.CriterionResult) string {
	if r.Matches && r.Confidence == 1.0 {
		return "no variant details to contradict"
	}
	if r.Matches {
		return fmt.Sprintf("variant match (%.2f of weighted attributes)", r.Confidence)
	}
	return fmt.Sprintf("variant mismatch (%.2f of weighted attributes)", r.Confidence)
}

func conditionPhrase(r model.ConditionResult) string {
	switch {
	case r.WithinGrade == 0:
		return "condition matches"
	case r.Matches:
		return fmt.Sprintf("condition within %d grade(s)", r.WithinGrade)
	default:
		return fmt.Sprintf("condition mismatch: %d grades apart", r.WithinGrade)
	}
}

func recencyPhrase(r model.RecencyResult) string {
	if r.DaysSinceSold == nil {
		if r.Confidence == soldNoDateConfidence {
			return "sold date unknown, benefit of the doubt"
		}
		return "active listing"
	}
	if r.Matches {
		return fmt.Sprintf("sold %d days ago", *r.DaysSinceSold)
	}
	return fmt.Sprintf("stale sale: %d days ago exceeds %d-day threshold", *r.DaysSinceSold, r.ThresholdDays)
}

func pricePhrase(r model.OutlierResult) string {
	switch {
	case r.IsOutlier:
		return fmt.Sprintf("price outlier (z=%.2f)", *r.ZScore)
	case r.ZScore == nil:
		return "price outlier check undecided (too few priced comps)"
	default:
		return fmt.Sprintf("price consistent with population (z=%.2f)", *r.ZScore)
	}
}
