package identify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relist-ai/comps-cli/internal/model"
)

func titledComp(id, title string, relevance float64) model.Comp {
	return model.Comp{ID: id, Title: title, RelevanceScore: relevance}
}

func TestConsensusTermsMajorityVote(t *testing.T) {
	item := model.ItemContext{Brand: "Omega", Model: "Speedmaster"}
	comps := []model.Comp{
		titledComp("a", "Omega Speedmaster Professional Moonwatch 3570", 0.9),
		titledComp("b", "Omega Speedmaster Moonwatch Professional chronograph", 0.8),
		titledComp("c", "Omega Speedmaster Professional 3570 steel", 0.7),
	}

	terms, share := consensusTerms(item, comps)
	require.NotEmpty(t, terms)

	// Claimed brand/model tokens are excluded; consensus terms remain.
	joined := strings.Join(terms, " ")
	assert.NotContains(t, joined, "omega")
	assert.NotContains(t, joined, "speedmaster")
	assert.Contains(t, terms, "professional")
	assert.Contains(t, terms, "moonwatch")
	assert.Equal(t, 1.0, share) // "professional" appears in all three titles
}

func TestConsensusTermsNoMajority(t *testing.T) {
	item := model.ItemContext{Brand: "Omega"}
	comps := []model.Comp{
		titledComp("a", "completely different thing", 0.9),
		titledComp("b", "another unrelated listing", 0.8),
		titledComp("c", "third random title here", 0.7),
	}

	terms, share := consensusTerms(item, comps)
	assert.Empty(t, terms)
	assert.Zero(t, share)
}

func TestBuildHintsRankedByConfidence(t *testing.T) {
	item := model.ItemContext{Brand: "Omega", Model: "Speedmaster"}
	comps := []model.Comp{
		titledComp("a", "Omega Speedmaster Professional Moonwatch", 0.9),
		titledComp("b", "Omega Speedmaster Professional Moonwatch", 0.8),
	}
	issues := []model.IdentificationIssue{
		{Type: model.IssueVisualMismatch, Severity: model.SeverityWarning},
		{Type: model.IssueNoMatchingComps, Severity: model.SeverityError},
	}

	hints := buildHints(item, comps, issues)
	require.NotEmpty(t, hints)
	for i := 1; i < len(hints); i++ {
		assert.GreaterOrEqual(t, hints[i-1].Confidence, hints[i].Confidence)
	}
}

func TestBuildHintsAlternateBrand(t *testing.T) {
	item := model.ItemContext{Brand: "Omega"}
	comps := []model.Comp{
		{ID: "a", RelevanceScore: 0.9, ExtractedData: map[string]string{model.AttrBrand: "Casio"}},
		{ID: "b", RelevanceScore: 0.8, ExtractedData: map[string]string{model.AttrBrand: "Casio"}},
	}
	issues := []model.IdentificationIssue{
		{Type: model.IssueAttributeInconsistency, Severity: model.SeverityError},
	}

	hints := buildHints(item, comps, issues)

	var found *model.ReidentificationHint
	for i := range hints {
		if hints[i].Type == model.HintAlternateBrand {
			found = &hints[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "casio", found.SuggestedValue)
}

func TestTokenizeKeepsModelNumbers(t *testing.T) {
	toks := tokenize("Omega 3570 ref no 42")
	assert.Contains(t, toks, "3570")
	assert.Contains(t, toks, "42")
	assert.NotContains(t, toks, "no")
}
