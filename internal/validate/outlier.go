package validate

import (
	"math"

	"github.com/relist-ai/comps-cli/internal/model"
)

// minPricedPopulation is the smallest priced-comp population for which
// outlier detection is decidable. Below it the check returns "no opinion"
// (nil z-score) rather than guessing.
const minPricedPopulation = 3

// detectOutlier runs the population-relative z-score check for one comp.
// It is recomputed per comp against the same full population — never
// memoized across different population slices. A comp without a usable
// price gets no opinion.
func detectOutlier(comp *model.Comp, population []model.Comp, zThreshold float64) model.OutlierResult {
	noOpinion := model.OutlierResult{
		CriterionResult: model.CriterionResult{Matches: true, Confidence: 1.0},
		IsOutlier:       false,
	}

	if !comp.HasPrice() {
		return noOpinion
	}

	prices := collectPrices(population)
	if len(prices) < minPricedPopulation {
		return noOpinion
	}

	mean, stdDev := populationStats(prices)

	if stdDev == 0 {
		z := 0.0
		return model.OutlierResult{
			CriterionResult: model.CriterionResult{Matches: true, Confidence: 1.0},
			ZScore:          &z,
			IsOutlier:       false,
		}
	}

	z := math.Abs(*comp.Price-mean) / stdDev
	isOutlier := z > zThreshold

	// Confidence shrinks as the z-score grows, hitting zero at twice the
	// threshold.
	conf := model.Clamp01(1.0 - z/(2*zThreshold))

	return model.OutlierResult{
		CriterionResult: model.CriterionResult{Matches: !isOutlier, Confidence: conf},
		ZScore:          &z,
		IsOutlier:       isOutlier,
	}
}

// collectPrices filters the population down to usable positive, non-NaN
// prices so malformed records cannot poison the statistics.
func collectPrices(population []model.Comp) []float64 {
	var prices []float64
	for i := range population {
		if population[i].HasPrice() {
			prices = append(prices, *population[i].Price)
		}
	}
	return prices
}

// populationStats returns the mean and population standard deviation
// (population variance, not sample variance).
func populationStats(prices []float64) (mean, stdDev float64) {
	for _, p := range prices {
		mean += p
	}
	mean /= float64(len(prices))

	var variance float64
	for _, p := range prices {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(prices))

	return mean, math.Sqrt(variance)
}
