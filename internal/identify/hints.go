package identify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relist-ai/comps-cli/internal/model"
	"github.com/relist-ai/comps-cli/internal/textmatch"
)

const (
	// hintTopN is how many of the highest-relevance comp titles feed the
	// majority-vote tokenizer.
	hintTopN = 10

	// majorityShare is the fraction of titles a token must appear in to
	// count as a consensus term.
	majorityShare = 0.5

	maxSuggestedTerms = 5
)

// stopwords are tokens too generic to carry identification signal.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "new": true,
	"used": true, "size": true, "mens": true, "womens": true, "free": true,
	"shipping": true, "authentic": true, "genuine": true, "original": true,
	"rare": true, "vintage": true, "lot": true, "set": true, "box": true,
	"excellent": true, "good": true, "condition": true, "mint": true,
}

// buildHints generates ranked re-identification hints from the issues found
// and the comp evidence. Called only when the trigger policy fires.
func buildHints(item model.ItemContext, comps []model.Comp, issues []model.IdentificationIssue) []model.ReidentificationHint {
	var hints []model.ReidentificationHint

	if terms, share := consensusTerms(item, comps); len(terms) > 0 {
		hints = append(hints, model.ReidentificationHint{
			Type:           model.HintRefineKeywords,
			SuggestedValue: strings.Join(terms, " "),
			Reason:         "terms shared by most high-relevance comp titles",
			Confidence:     share,
		})
	}

	for _, issue := range issues {
		switch {
		case issue.Type == model.IssueNoMatchingComps:
			hints = append(hints, model.ReidentificationHint{
				Type:       model.HintBroadenSearch,
				Reason:     "no comps found; the identity may be too specific or wrong",
				Confidence: 0.6,
			})
		case issue.Type == model.IssueLowCompQuality:
			hints = append(hints, model.ReidentificationHint{
				Type:       model.HintBroadenSearch,
				Reason:     "all comps scored low; the search terms may be off target",
				Confidence: 0.5,
			})
		case issue.Type == model.IssueAttributeInconsistency && issue.Severity == model.SeverityError:
			if brand := dominantConflictingBrand(item, comps); brand != "" {
				hints = append(hints, model.ReidentificationHint{
					Type:           model.HintAlternateBrand,
					SuggestedValue: brand,
					Reason:         fmt.Sprintf("comp evidence points at %q rather than %q", brand, item.Brand),
					Confidence:     0.7,
				})
			}
		case issue.Type == model.IssueVisualMismatch:
			hints = append(hints, model.ReidentificationHint{
				Type:       model.HintAlternateModel,
				Reason:     "top comps look like a different product; the model guess may be wrong",
				Confidence: 0.4,
			})
		}
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return hints[i].Confidence > hints[j].Confidence
	})
	return hints
}

// consensusTerms tokenizes the top comp titles and majority-votes the
// tokens, excluding stopwords and terms already claimed by the item's brand
// and model. Returns the consensus terms and the share of titles backing the
// strongest one.
func consensusTerms(item model.ItemContext, comps []model.Comp) ([]string, float64) {
	top := topByRelevance(comps, hintTopN)
	if len(top) == 0 {
		return nil, 0
	}

	claimed := make(map[string]bool)
	for _, s := range []string{item.Brand, item.Model} {
		for _, tok := range tokenize(s) {
			claimed[tok] = true
		}
	}

	counts := make(map[string]int)
	for i := range top {
		seen := make(map[string]bool)
		for _, tok := range tokenize(top[i].Title) {
			if stopwords[tok] || claimed[tok] || seen[tok] {
				continue
			}
			seen[tok] = true
			counts[tok]++
		}
	}

	need := int(float64(len(top))*majorityShare) + 1
	type termCount struct {
		term string
		n    int
	}
	var winners []termCount
	for term, n := range counts {
		if n >= need {
			winners = append(winners, termCount{term, n})
		}
	}
	if len(winners) == 0 {
		return nil, 0
	}

	sort.Slice(winners, func(i, j int) bool {
		if winners[i].n != winners[j].n {
			return winners[i].n > winners[j].n
		}
		return winners[i].term < winners[j].term
	})
	if len(winners) > maxSuggestedTerms {
		winners = winners[:maxSuggestedTerms]
	}

	terms := make([]string, len(winners))
	for i, w := range winners {
		terms[i] = w.term
	}
	share := float64(winners[0].n) / float64(len(top))
	return terms, share
}

// dominantConflictingBrand returns the most common extracted brand that
// disagrees with the claimed one.
func dominantConflictingBrand(item model.ItemContext, comps []model.Comp) string {
	conflicts := make(map[string]int)
	for i := range comps {
		brand := comps[i].Attr(model.AttrBrand)
		if brand == "" || brandsAgree(item.Brand, brand) {
			continue
		}
		conflicts[textmatch.Normalize(brand)]++
	}
	return topKey(conflicts)
}

// tokenize splits a normalized string into terms at least three characters
// long, keeping shorter ones only when numeric (model numbers matter).
func tokenize(s string) []string {
	fields := strings.Fields(textmatch.Normalize(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 3 || isNumeric(f) {
			out = append(out, f)
		}
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
