package model

// CriterionResult is the outcome of a single validation check.
type CriterionResult struct {
	Matches    bool    `json:"matches"`
	Confidence float64 `json:"confidence"`
}

// ConditionResult extends CriterionResult with the grade distance between
// the item's condition and the comp's.
type ConditionResult struct {
	CriterionResult
	WithinGrade int `json:"within_grade"`
}

// RecencyResult extends CriterionResult with the sold-date delta. Days is
// nil for active listings and for sold listings without a sold date.
type RecencyResult struct {
	CriterionResult
	DaysSinceSold *int `json:"days_since_sold,omitempty"`
	ThresholdDays int  `json:"threshold_days"`
}

// OutlierResult is the price-outlier check outcome. ZScore is nil when the
// population is too small to decide (fewer than 3 priced comps) or when the
// comp itself has no price; nil means "no opinion", distinct from a clean
// IsOutlier=false verdict.
type OutlierResult struct {
	CriterionResult
	ZScore    *float64 `json:"z_score,omitempty"`
	IsOutlier bool     `json:"is_outlier"`
}

// Criteria groups the five per-criterion results of one validation pass.
type Criteria struct {
	Brand     CriterionResult `json:"brand"`
	Model     CriterionResult `json:"model"`
	Variant   CriterionResult `json:"variant"`
	Condition ConditionResult `json:"condition"`
	Recency   RecencyResult   `json:"recency"`
	Price     OutlierResult   `json:"price"`
}

// ValidationResult is the full verdict attached to a comp. It is created
// once per validation pass and never mutated; re-validation supersedes it
// with a fresh result. Reasoning is a stable, ordered human-readable
// explanation consumed downstream for audit display.
type ValidationResult struct {
	IsValid      bool     `json:"is_valid"`
	OverallScore float64  `json:"overall_score"`
	Criteria     Criteria `json:"criteria"`
	Reasoning    string   `json:"reasoning"`
	Category     string   `json:"category"`
}

// ValidationSummary aggregates verdicts over a comp set.
type ValidationSummary struct {
	Total  int     `json:"total"`
	Passed int     `json:"passed"`
	Failed int     `json:"failed"`
	Mean   float64 `json:"mean_score"`
}
