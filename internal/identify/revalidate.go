// Package identify cross-checks aggregate comp evidence against the claimed
// product identity and, when the evidence contradicts it, emits ranked hints
// for re-running the upstream identification stage. Crossing a trigger
// threshold produces data, never an error; retrying is the caller's job.
package identify

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/relist-ai/comps-cli/internal/config"
	"github.com/relist-ai/comps-cli/internal/model"
	"github.com/relist-ai/comps-cli/internal/textmatch"
)

const (
	// priceRatioLimit bounds expected-vs-observed price: a mean comp price
	// more than 3x off the identification estimate is a hard mismatch.
	priceRatioLimit = 3.0

	// cvWarnThreshold flags a comp population whose price spread (stddev
	// over mean) is too wide to be one product.
	cvWarnThreshold = 0.8

	// visualTopN is how many of the highest-relevance comps the visual
	// consistency check inspects.
	visualTopN = 5

	// Confidence penalties per issue severity.
	errorPenalty   = 0.25
	warningPenalty = 0.1

	brandFamilyThreshold = 0.8
)

// brandFamilies groups brand names that legitimately co-occur on the same
// product, so Nike comps under a Jordan item are not an inconsistency.
var brandFamilies = [][]string{
	{"nike", "jordan", "air jordan"},
	{"adidas", "yeezy"},
	{"louis vuitton", "lv"},
	{"apple", "beats"},
	{"sony", "playstation"},
	{"microsoft", "xbox"},
}

// Checker runs the identification-level consistency checks.
type Checker struct {
	cfg config.EngineConfig
}

// NewChecker creates a Checker with the given engine thresholds.
func NewChecker(cfg config.EngineConfig) *Checker {
	return &Checker{cfg: cfg}
}

// Check inspects the validated comp set against the claimed identity and
// returns the verdict: issues found, whether re-identification should run,
// and ranked hints for it. Comps are expected to have passed through the
// pipeline already (relevance and validation populated).
func (c *Checker) Check(item model.ItemContext, comps []model.Comp) model.ValidationCheckResult {
	stats := buildStats(comps)

	var issues []model.IdentificationIssue
	issues = append(issues, c.checkPriceSanity(item, stats)...)
	issues = append(issues, c.checkCompMatching(comps)...)
	issues = append(issues, c.checkAttributeConsistency(item, comps)...)
	issues = append(issues, c.checkVisualConsistency(comps)...)

	var errors, warnings int
	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityError:
			errors++
		case model.SeverityWarning:
			warnings++
		}
	}

	result := model.ValidationCheckResult{
		IsValid:          errors == 0,
		Confidence:       model.Clamp01(1 - errorPenalty*float64(errors) - warningPenalty*float64(warnings)),
		Issues:           issues,
		ShouldReidentify: shouldReidentify(issues, errors),
		Stats:            stats,
	}

	if result.ShouldReidentify {
		result.Hints = buildHints(item, comps, issues)
	}

	zap.L().Info("identification re-validation complete",
		zap.String("phase", "identify"),
		zap.Int("issues", len(issues)),
		zap.Int("errors", errors),
		zap.Bool("should_reidentify", result.ShouldReidentify),
		zap.Float64("confidence", result.Confidence),
	)
	return result
}

// shouldReidentify is the trigger policy: two or more errors, or a single
// error-severity no-matching-comps or price-mismatch issue.
func shouldReidentify(issues []model.IdentificationIssue, errors int) bool {
	if errors >= 2 {
		return true
	}
	for _, issue := range issues {
		if issue.Severity != model.SeverityError {
			continue
		}
		if issue.Type == model.IssueNoMatchingComps || issue.Type == model.IssuePriceMismatch {
			return true
		}
	}
	return false
}

func (c *Checker) checkPriceSanity(item model.ItemContext, stats model.CompStats) []model.IdentificationIssue {
	var issues []model.IdentificationIssue

	if item.EstimatedValue != nil && *item.EstimatedValue > 0 && stats.PricedComps > 0 {
		ratio := stats.MeanPrice / *item.EstimatedValue
		if ratio > priceRatioLimit || ratio < 1/priceRatioLimit {
			issues = append(issues, model.IdentificationIssue{
				Type:     model.IssuePriceMismatch,
				Severity: model.SeverityError,
				Message:  "comp prices contradict the identification estimate",
				Evidence: fmt.Sprintf("mean comp price %.2f vs estimated value %.2f", stats.MeanPrice, *item.EstimatedValue),
			})
		}
	}

	if stats.PricedComps >= 3 && stats.MeanPrice > 0 {
		cv := stats.PriceStdDev / stats.MeanPrice
		if cv > cvWarnThreshold {
			issues = append(issues, model.IdentificationIssue{
				Type:     model.IssuePriceMismatch,
				Severity: model.SeverityWarning,
				Message:  "comp price spread too wide for a single product",
				Evidence: fmt.Sprintf("coefficient of variation %.2f over %d priced comps", cv, stats.PricedComps),
			})
		}
	}

	return issues
}

func (c *Checker) checkCompMatching(comps []model.Comp) []model.IdentificationIssue {
	if len(comps) == 0 {
		return []model.IdentificationIssue{{
			Type:     model.IssueNoMatchingComps,
			Severity: model.SeverityError,
			Message:  "no comparable listings found for the claimed identity",
		}}
	}

	allLow := true
	for i := range comps {
		if comps[i].RelevanceScore >= c.cfg.ValidatedThreshold {
			allLow = false
			break
		}
	}
	if allLow {
		return []model.IdentificationIssue{{
			Type:     model.IssueLowCompQuality,
			Severity: model.SeverityWarning,
			Message:  "every comp scored below the validated threshold",
			Evidence: fmt.Sprintf("%d comps, best below %.2f", len(comps), c.cfg.ValidatedThreshold),
		}}
	}
	return nil
}

// checkAttributeConsistency looks for a comp population whose extracted
// brands disagree with the claimed brand. Brand families are tolerated.
func (c *Checker) checkAttributeConsistency(item model.ItemContext, comps []model.Comp) []model.IdentificationIssue {
	if item.Brand == "" {
		return nil
	}

	var withBrand, conflicting int
	conflicts := make(map[string]int)
	for i := range comps {
		brand := comps[i].Attr(model.AttrBrand)
		if brand == "" {
			continue
		}
		withBrand++
		if brandsAgree(item.Brand, brand) {
			continue
		}
		conflicting++
		conflicts[textmatch.Normalize(brand)]++
	}

	if withBrand < 2 || conflicting*2 <= withBrand {
		return nil
	}

	return []model.IdentificationIssue{{
		Type:     model.IssueAttributeInconsistency,
		Severity: model.SeverityError,
		Message:  "extracted comp brands contradict the claimed brand",
		Evidence: fmt.Sprintf("%d of %d branded comps disagree with %q (most common: %s)", conflicting, withBrand, item.Brand, topKey(conflicts)),
	}}
}

func (c *Checker) checkVisualConsistency(comps []model.Comp) []model.IdentificationIssue {
	top := topByRelevance(comps, visualTopN)
	if len(top) == 0 {
		return nil
	}

	var failed int
	for i := range top {
		if top[i].LikelyWrongProduct {
			failed++
		}
	}
	if failed*2 <= len(top) {
		return nil
	}

	return []model.IdentificationIssue{{
		Type:     model.IssueVisualMismatch,
		Severity: model.SeverityWarning,
		Message:  "most top comps failed image cross-validation",
		Evidence: fmt.Sprintf("%d of top %d flagged likely-wrong-product", failed, len(top)),
	}}
}

// brandsAgree reports whether two brand strings name the same or a related
// brand.
func brandsAgree(a, b string) bool {
	if textmatch.Similarity(a, b) >= brandFamilyThreshold {
		return true
	}
	na, nb := textmatch.Normalize(a), textmatch.Normalize(b)
	for _, family := range brandFamilies {
		var hasA, hasB bool
		for _, member := range family {
			if na == member {
				hasA = true
			}
			if nb == member {
				hasB = true
			}
		}
		if hasA && hasB {
			return true
		}
	}
	return false
}

func buildStats(comps []model.Comp) model.CompStats {
	stats := model.CompStats{TotalComps: len(comps)}

	var priceSum, relevanceSum float64
	var prices []float64
	for i := range comps {
		c := &comps[i]
		relevanceSum += c.RelevanceScore
		if c.Validation != nil && c.Validation.IsValid {
			stats.ValidComps++
		}
		if c.HasPrice() {
			prices = append(prices, *c.Price)
			priceSum += *c.Price
		}
	}

	stats.PricedComps = len(prices)
	if len(prices) > 0 {
		stats.MeanPrice = priceSum / float64(len(prices))
		var varSum float64
		for _, p := range prices {
			d := p - stats.MeanPrice
			varSum += d * d
		}
		stats.PriceStdDev = math.Sqrt(varSum / float64(len(prices)))
	}
	if len(comps) > 0 {
		stats.MeanRelevance = relevanceSum / float64(len(comps))
	}
	return stats
}

func topByRelevance(comps []model.Comp, n int) []model.Comp {
	sorted := make([]model.Comp, len(comps))
	copy(sorted, comps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func topKey(counts map[string]int) string {
	var best string
	bestN := -1
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}
