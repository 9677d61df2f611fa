package comps

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relist-ai/comps-cli/internal/config"
	"github.com/relist-ai/comps-cli/internal/model"
	"github.com/relist-ai/comps-cli/pkg/vision"
)

// fakeVision routes comparisons by comp image URL.
type fakeVision struct {
	results map[string]*vision.Comparison
	errs    map[string]error
}

func (f *fakeVision) CompareImages(_ context.Context, _ []string, compImageURL string) (*vision.Comparison, error) {
	if err, ok := f.errs[compImageURL]; ok {
		return nil, err
	}
	if c, ok := f.results[compImageURL]; ok {
		return c, nil
	}
	return nil, eris.Errorf("no fixture for %s", compImageURL)
}

func imageItem() model.ItemContext {
	return model.ItemContext{
		Brand:     "Nike",
		ImageURLs: []string{"https://img.example/item-1.jpg"},
	}
}

func keywordComp(id, imageURL string) model.Comp {
	c := model.Comp{
		ID:        id,
		MatchType: model.MatchBrandModelKeyword,
		ImageURL:  imageURL,
	}
	c.BaseConfidence = c.MatchType.BaseConfidence()
	c.RelevanceScore = c.BaseConfidence
	return c
}

func TestCrossValidateImagesVerdicts(t *testing.T) {
	cfg := config.DefaultEngine()
	client := &fakeVision{results: map[string]*vision.Comparison{
		"https://img.example/verified.jpg": {SimilarityScore: 0.93, IsSameProduct: true},
		"https://img.example/partial.jpg":  {SimilarityScore: 0.6, IsSameProduct: false},
		"https://img.example/wrong.jpg":    {SimilarityScore: 0.3, IsSameProduct: false},
	}}

	comps := []model.Comp{
		keywordComp("verified", "https://img.example/verified.jpg"),
		keywordComp("partial", "https://img.example/partial.jpg"),
		keywordComp("wrong", "https://img.example/wrong.jpg"),
	}

	out, err := CrossValidateImages(context.Background(), client, imageItem(), comps, cfg)
	require.NoError(t, err)
	require.Len(t, out, 3)

	byID := make(map[string]model.Comp, len(out))
	for _, c := range out {
		byID[c.ID] = c
	}

	// High similarity + same product: upgraded to image-verified.
	verified := byID["verified"]
	assert.Equal(t, model.MatchImageSimilarity, verified.MatchType)
	assert.Equal(t, cfg.ImageVerifiedScore, verified.RelevanceScore)
	require.NotNil(t, verified.ImageScore)
	assert.InDelta(t, 0.93, *verified.ImageScore, 1e-9)
	assert.False(t, verified.LikelyWrongProduct)

	// Middling similarity: base confidence scaled by similarity.
	partial := byID["partial"]
	assert.Equal(t, model.MatchBrandModelKeyword, partial.MatchType)
	assert.InDelta(t, 0.65*0.6, partial.RelevanceScore, 1e-9)
	assert.False(t, partial.LikelyWrongProduct)

	// Low similarity: hard downgrade and flagged.
	wrong := byID["wrong"]
	assert.Equal(t, cfg.ImageRejectScore, wrong.RelevanceScore)
	assert.True(t, wrong.LikelyWrongProduct)
}

func TestCrossValidateImagesFailureDoesNotAbortBatch(t *testing.T) {
	cfg := config.DefaultEngine()
	client := &fakeVision{
		results: map[string]*vision.Comparison{
			"https://img.example/ok.jpg": {SimilarityScore: 0.9, IsSameProduct: true},
		},
		errs: map[string]error{
			"https://img.example/broken.jpg": eris.New("upstream 500"),
		},
	}

	comps := []model.Comp{
		keywordComp("ok", "https://img.example/ok.jpg"),
		keywordComp("broken", "https://img.example/broken.jpg"),
	}

	out, err := CrossValidateImages(context.Background(), client, imageItem(), comps, cfg)
	require.NoError(t, err)

	byID := make(map[string]model.Comp, len(out))
	for _, c := range out {
		byID[c.ID] = c
	}

	assert.Equal(t, model.MatchImageSimilarity, byID["ok"].MatchType)

	// The failed comparison leaves the comp exactly as it was.
	assert.Equal(t, comps[1], byID["broken"])
}

func TestCrossValidateImagesSkipsExactMatches(t *testing.T) {
	cfg := config.DefaultEngine()
	client := &fakeVision{} // any call would error: no fixtures

	exact := model.Comp{ID: "upc", MatchType: model.MatchUPCExact, ImageURL: "https://img.example/x.jpg"}
	noImage := keywordComp("noimg", "")

	out, err := CrossValidateImages(context.Background(), client, imageItem(), []model.Comp{exact, noImage}, cfg)
	require.NoError(t, err)
	assert.Equal(t, exact, out[0])
	assert.Equal(t, noImage, out[1])
}

func TestCrossValidateImagesWithoutItemImages(t *testing.T) {
	cfg := config.DefaultEngine()
	comps := []model.Comp{keywordComp("a", "https://img.example/a.jpg")}

	out, err := CrossValidateImages(context.Background(), &fakeVision{}, model.ItemContext{}, comps, cfg)
	require.NoError(t, err)
	assert.Equal(t, comps, out)

	out, err = CrossValidateImages(context.Background(), nil, imageItem(), comps, cfg)
	require.NoError(t, err)
	assert.Equal(t, comps, out)
}
