package model

import "time"

// Run is one persisted validation run: the item as identified, the final
// ranked comp set, and the identification-level verdict. Runs are audit
// records for the CLI and HTTP surfaces; the engine itself never reads them.
type Run struct {
	ID        string                 `json:"id"`
	Item      ItemContext            `json:"item"`
	Comps     []Comp                 `json:"comps"`
	Check     *ValidationCheckResult `json:"check,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
