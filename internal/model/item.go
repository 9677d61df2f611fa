package model

// Variant describes the sub-attributes that distinguish one version of a
// product from another. Extra carries category-specific attributes such as
// storage capacity or grading-company grade.
type Variant struct {
	Color   string            `json:"color,omitempty"`
	Size    string            `json:"size,omitempty"`
	Edition string            `json:"edition,omitempty"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// Empty reports whether the variant carries no attributes at all.
func (v Variant) Empty() bool {
	return v.Color == "" && v.Size == "" && v.Edition == "" && len(v.Extra) == 0
}

// ItemContext describes the item being priced, as produced by the upstream
// identification stage. Every field is optional; validators apply
// benefit-of-the-doubt policies when a field is absent rather than failing.
type ItemContext struct {
	Brand     string  `json:"brand,omitempty"`
	Model     string  `json:"model,omitempty"`
	Condition string  `json:"condition,omitempty"`
	Variant   Variant `json:"variant,omitempty"`

	// Category is the explicit category identifier when identification
	// resolved one. Categories is the broader list of category strings the
	// identification stage reported; both feed the resolution cascade.
	Category   string   `json:"category,omitempty"`
	Categories []string `json:"categories,omitempty"`

	// ImageURLs are the item's own photos, used by image cross-validation.
	ImageURLs []string `json:"image_urls,omitempty"`

	// EstimatedValue is identification's price expectation, used by the
	// price-sanity re-validation check.
	EstimatedValue *float64 `json:"estimated_value,omitempty"`
}
