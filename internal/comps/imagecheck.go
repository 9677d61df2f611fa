package comps

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/relist-ai/comps-cli/internal/config"
	"github.com/relist-ai/comps-cli/internal/model"
	"github.com/relist-ai/comps-cli/pkg/vision"
)

// isKeywordSourced reports whether a comp's discovery method lacks a
// verified identity signal. Only these comps go through image
// cross-validation; identifier-exact matches already carry one.
func isKeywordSourced(m model.MatchType) bool {
	return m == model.MatchBrandModelKeyword || m == model.MatchGenericKeyword
}

// CrossValidateImages compares keyword-sourced comps' photos against the
// item's own photos and rescores them by the verdict. Comparisons run with
// bounded concurrency; a failed comparison for one comp is logged and
// leaves that comp untouched, never aborting the batch. Comps without an
// image, and all identifier-exact comps, pass through unchanged.
func CrossValidateImages(ctx context.Context, client vision.Client, item model.ItemContext, comps []model.Comp, cfg config.EngineConfig) ([]model.Comp, error) {
	out := make([]model.Comp, len(comps))
	copy(out, comps)

	if client == nil || len(item.ImageURLs) == 0 {
		return out, nil
	}

	var candidates []int
	for i := range out {
		if isKeywordSourced(out[i].MatchType) && out[i].ImageURL != "" {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return out, nil
	}

	log := zap.L().With(zap.String("phase", "image_check"))
	log.Info("cross-validating comp images", zap.Int("candidates", len(candidates)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.ImageBatchSize)

	for _, i := range candidates {
		g.Go(func() error {
			comparison, err := client.CompareImages(gctx, item.ImageURLs, out[i].ImageURL)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("image comparison failed",
					zap.String("comp_id", out[i].ID),
					zap.Error(err))
				return nil // don't fail the batch
			}
			out[i] = applyComparison(out[i], comparison, cfg)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "comps: image cross-validation")
	}
	return out, nil
}

// applyComparison rescores one comp from its image-comparison verdict.
func applyComparison(comp model.Comp, cmp *vision.Comparison, cfg config.EngineConfig) model.Comp {
	sim := cmp.SimilarityScore
	comp.ImageScore = &sim

	switch {
	case sim >= cfg.ImageVerifyThreshold && cmp.IsSameProduct:
		comp.MatchType = model.MatchImageSimilarity
		comp.BaseConfidence = model.MatchImageSimilarity.BaseConfidence()
		return comp.WithRelevance(cfg.ImageVerifiedScore)
	case sim >= cfg.ImagePartialThreshold:
		return comp.WithRelevance(comp.BaseConfidence * sim)
	default:
		comp.LikelyWrongProduct = true
		return comp.WithRelevance(cfg.ImageRejectScore)
	}
}
