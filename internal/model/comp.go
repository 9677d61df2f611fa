// Package model defines the data types shared across the comp validation engine.
package model

import "time"

// ListingType distinguishes sold comps from active listings.
type ListingType string

const (
	ListingSold   ListingType = "sold_listing"
	ListingActive ListingType = "active_listing"
)

// MatchType identifies the discovery method that produced a comp. It acts as
// a prior confidence signal: exact-identifier matches start far higher than
// keyword hits.
type MatchType string

const (
	MatchUPCExact          MatchType = "upc_exact"
	MatchASINExact         MatchType = "asin_exact"
	MatchImageSimilarity   MatchType = "image_similarity"
	MatchBrandModelKeyword MatchType = "brand_model_keyword"
	MatchGenericKeyword    MatchType = "generic_keyword"
)

// baseConfidence maps each match type to its fixed prior weight.
var baseConfidence = map[MatchType]float64{
	MatchUPCExact:          0.95,
	MatchASINExact:         0.92,
	MatchImageSimilarity:   0.85,
	MatchBrandModelKeyword: 0.65,
	MatchGenericKeyword:    0.45,
}

// BaseConfidence returns the fixed prior weight for a match type.
// Unknown match types get the lowest keyword weight.
func (m MatchType) BaseConfidence() float64 {
	if w, ok := baseConfidence[m]; ok {
		return w
	}
	return baseConfidence[MatchGenericKeyword]
}

// Valid reports whether m is a known match type.
func (m MatchType) Valid() bool {
	_, ok := baseConfidence[m]
	return ok
}

// Well-known ExtractedData keys. The attribute bag is open; these are the
// keys the validators and category tables understand.
const (
	AttrBrand    = "brand"
	AttrModel    = "model"
	AttrColor    = "color"
	AttrColorway = "colorway"
	AttrSize     = "size"
	AttrEdition  = "edition"
	AttrMaterial = "material"
	AttrStorage  = "storage"
	AttrGrade    = "grade"
	AttrASIN     = "asin"
)

// Comp is a single comparable marketplace listing used as pricing evidence.
// Discovery creates it with MatchType pinned; the scoring, image-validation
// and structured-validation stages each return enriched copies. A comp is
// never mutated in place and never deleted, only filtered out of the
// returned set.
type Comp struct {
	ID        string      `json:"id"`
	Source    string      `json:"source"`
	Type      ListingType `json:"type"`
	Title     string      `json:"title"`
	Price     *float64    `json:"price,omitempty"`
	Condition string      `json:"condition,omitempty"`
	SoldDate  *time.Time  `json:"sold_date,omitempty"`
	ImageURL  string      `json:"image_url,omitempty"`

	// ExtractedData is the open attribute bag populated by marketplace
	// scraping (brand, model, colorway, size, storage, grade, ...).
	ExtractedData map[string]string `json:"extracted_data,omitempty"`

	// Fields below are written by the engine, never supplied by discovery.
	MatchType      MatchType         `json:"match_type"`
	BaseConfidence float64           `json:"base_confidence"`
	RelevanceScore float64           `json:"relevance_score"`
	Validation     *ValidationResult `json:"validation,omitempty"`

	// ImageScore is the similarity reported by image cross-validation,
	// when that stage ran for this comp.
	ImageScore *float64 `json:"image_score,omitempty"`

	// LikelyWrongProduct marks comps whose image comparison fell below the
	// reject threshold.
	LikelyWrongProduct bool `json:"likely_wrong_product,omitempty"`

	// MarginalDiscounted marks comps retained at half weight by the
	// scarcity relaxation.
	MarginalDiscounted bool `json:"marginal_discounted,omitempty"`
}

// Attr returns the named extracted attribute, or "" when absent.
func (c *Comp) Attr(key string) string {
	if c.ExtractedData == nil {
		return ""
	}
	return c.ExtractedData[key]
}

// HasPrice reports whether the comp carries a usable positive price.
// NaN and non-positive prices are excluded so they cannot poison the
// population statistics.
func (c *Comp) HasPrice() bool {
	return c.Price != nil && *c.Price > 0 && *c.Price == *c.Price
}

// WithRelevance returns a copy of the comp with RelevanceScore set, clamped
// to [0,1].
func (c Comp) WithRelevance(score float64) Comp {
	c.RelevanceScore = Clamp01(score)
	return c
}

// Clamp01 clamps v to the [0,1] interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
