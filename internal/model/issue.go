package model

// IssueType classifies identification-level problems surfaced by the
// re-validation loop.
type IssueType string

const (
	IssuePriceMismatch          IssueType = "price_mismatch"
	IssueNoMatchingComps        IssueType = "no_matching_comps"
	IssueLowCompQuality         IssueType = "low_comp_quality"
	IssueAttributeInconsistency IssueType = "attribute_inconsistency"
	IssueVisualMismatch         IssueType = "visual_mismatch"
	IssueCategoryMismatch       IssueType = "category_mismatch"
)

// IssueSeverity ranks an identification issue.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// IdentificationIssue records one problem found while cross-checking the
// comp evidence against the claimed product identity. Issues are produced
// fresh each validation pass.
type IdentificationIssue struct {
	Type     IssueType     `json:"type"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
	Evidence string        `json:"evidence,omitempty"`
}

// HintType classifies a re-identification suggestion.
type HintType string

const (
	HintRefineKeywords HintType = "refine_keywords"
	HintBroadenSearch  HintType = "broaden_search"
	HintAlternateBrand HintType = "alternate_brand"
	HintAlternateModel HintType = "alternate_model"
)

// ReidentificationHint is a ranked suggestion for re-running identification.
// The engine only emits hints; acting on them is the caller's responsibility.
type ReidentificationHint struct {
	Type           HintType `json:"type"`
	SuggestedValue string   `json:"suggested_value,omitempty"`
	Reason         string   `json:"reason"`
	Confidence     float64  `json:"confidence"`
}

// CompStats summarizes the comp evidence behind a validation verdict.
type CompStats struct {
	TotalComps    int     `json:"total_comps"`
	ValidComps    int     `json:"valid_comps"`
	PricedComps   int     `json:"priced_comps"`
	MeanPrice     float64 `json:"mean_price,omitempty"`
	PriceStdDev   float64 `json:"price_std_dev,omitempty"`
	MeanRelevance float64 `json:"mean_relevance,omitempty"`
}

// ValidationCheckResult is the identification-level verdict returned to the
// orchestration layer, which decides whether to loop back to identification.
type ValidationCheckResult struct {
	IsValid          bool                   `json:"is_valid"`
	Confidence       float64                `json:"confidence"`
	Issues           []IdentificationIssue  `json:"issues"`
	ShouldReidentify bool                   `json:"should_reidentify"`
	Hints            []ReidentificationHint `json:"reidentification_hints"`
	Stats            CompStats              `json:"stats"`
}
