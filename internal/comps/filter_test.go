package comps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relist-ai/comps-cli/internal/config"
	"github.com/relist-ai/comps-cli/internal/model"
)

func scoredComp(id string, score float64) model.Comp {
	return model.Comp{ID: id, RelevanceScore: score}
}

func TestFilterScarcityRelaxation(t *testing.T) {
	cfg := config.DefaultEngine()

	// 3 validated comps is below the 5-comp bar, so the two 0.30-scoring
	// comps are retained at half weight instead of discarded.
	comps := []model.Comp{
		scoredComp("a", 0.80),
		scoredComp("b", 0.70),
		scoredComp("c", 0.65),
		scoredComp("d", 0.30),
		scoredComp("e", 0.30),
	}

	out := Filter(comps, cfg)
	require.Len(t, out, 5)

	byID := make(map[string]model.Comp, len(out))
	for _, c := range out {
		byID[c.ID] = c
	}

	assert.InDelta(t, 0.15, byID["d"].RelevanceScore, 1e-9)
	assert.True(t, byID["d"].MarginalDiscounted)
	assert.InDelta(t, 0.15, byID["e"].RelevanceScore, 1e-9)
	assert.False(t, byID["a"].MarginalDiscounted)
}

func TestFilterEnoughValidatedDropsMarginal(t *testing.T) {
	cfg := config.DefaultEngine()

	comps := []model.Comp{
		scoredComp("a", 0.90),
		scoredComp("b", 0.85),
		scoredComp("c", 0.80),
		scoredComp("d", 0.75),
		scoredComp("e", 0.62),
		scoredComp("marginal", 0.40),
	}

	out := Filter(comps, cfg)
	require.Len(t, out, 5)
	for _, c := range out {
		assert.NotEqual(t, "marginal", c.ID)
	}
}

func TestFilterDropsBelowFloor(t *testing.T) {
	cfg := config.DefaultEngine()

	out := Filter([]model.Comp{
		scoredComp("keep", 0.70),
		scoredComp("floor", 0.10),
	}, cfg)

	require.Len(t, out, 1)
	assert.Equal(t, "keep", out[0].ID)
}

func TestFilterSortsDescending(t *testing.T) {
	cfg := config.DefaultEngine()

	out := Filter([]model.Comp{
		scoredComp("low", 0.62),
		scoredComp("high", 0.95),
		scoredComp("mid", 0.75),
		scoredComp("marginal", 0.50),
	}, cfg)

	require.Len(t, out, 4)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].RelevanceScore, out[i].RelevanceScore)
	}
	assert.Equal(t, "high", out[0].ID)
	assert.Equal(t, "marginal", out[3].ID)
}

func TestFilterPrefersValidationScore(t *testing.T) {
	cfg := config.DefaultEngine()

	// Heuristic relevance said 0.9, structured validation said 0.3: the
	// validation verdict wins and the comp lands in the marginal band.
	comp := scoredComp("overruled", 0.90)
	comp.Validation = &model.ValidationResult{OverallScore: 0.30}

	out := Filter([]model.Comp{comp}, cfg)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.15, out[0].RelevanceScore, 1e-9)
	assert.True(t, out[0].MarginalDiscounted)
}

func TestFilterEmpty(t *testing.T) {
	assert.Empty(t, Filter(nil, config.DefaultEngine()))
}
