// Package condition maps free-text marketplace condition descriptions onto a
// fixed ordered grade scale. The distance between two grade indices
// approximates the buyer-perceived condition gap.
package condition

import (
	"sort"
	"strings"
)

// Grade is one step on the ordered condition scale.
type Grade string

// Grades, best to worst. The ordering is a design contract: validators key
// off index distance, and the aggregator discounts per grade of distance.
const (
	New                Grade = "new"
	NewWithTags        Grade = "new-with-tags"
	NewWithBox         Grade = "new-with-box"
	NewWithoutTags     Grade = "new-without-tags"
	NewWithoutBox      Grade = "new-without-box"
	OpenBox            Grade = "open-box"
	LikeNew            Grade = "like-new"
	Excellent          Grade = "excellent"
	VeryGood           Grade = "very-good"
	Good               Grade = "good"
	Acceptable         Grade = "acceptable"
	Fair               Grade = "fair"
	Used               Grade = "used"
	ForParts           Grade = "for-parts"
	ForPartsNotWorking Grade = "for-parts-or-not-working"
)

// ordered is the grade scale best→worst.
var ordered = []Grade{
	New, NewWithTags, NewWithBox, NewWithoutTags, NewWithoutBox,
	OpenBox, LikeNew, Excellent, VeryGood, Good,
	Acceptable, Fair, Used, ForParts, ForPartsNotWorking,
}

// aliases maps marketplace phrasings to grades. Exact lookup after
// lowercase/trim, tried before substring matching.
var aliases = map[string]Grade{
	"brand new":                New,
	"mint":                     LikeNew,
	"refurbished":              VeryGood,
	"manufacturer refurbished": LikeNew,
	"seller refurbished":       VeryGood,
	"pre-owned":                Used,
	"preowned":                 Used,
	"open box":                 OpenBox,
	"nwt":                      NewWithTags,
	"nwot":                     NewWithoutTags,
	"nib":                      NewWithBox,
	"bnib":                     NewWithBox,
	"factory sealed":           New,
	"sealed":                   New,
	"as-is":                    ForParts,
	"as is":                    ForParts,
	"not working":              ForPartsNotWorking,
	"parts only":               ForParts,
}

// bySpecificity lists grades longest-name first, so substring matching tries
// "new-without-box" before "new" and "very-good" before "good".
var bySpecificity = func() []Grade {
	gs := make([]Grade, len(ordered))
	copy(gs, ordered)
	sort.SliceStable(gs, func(i, j int) bool { return len(gs[i]) > len(gs[j]) })
	return gs
}()

// index maps each grade to its position on the scale.
var index = func() map[Grade]int {
	m := make(map[Grade]int, len(ordered))
	for i, g := range ordered {
		m[g] = i
	}
	return m
}()

// Normalize maps a free-text condition string to a grade: exact alias lookup
// first, then substring match against the grade list, then "used".
func Normalize(raw string) Grade {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Used
	}

	if g, ok := aliases[s]; ok {
		return g
	}
	if _, ok := index[Grade(s)]; ok {
		return Grade(s)
	}

	// Substring match, most specific grade name first. Grade names use
	// hyphens; listings use spaces, so both spellings are checked.
	for _, g := range bySpecificity {
		spaced := strings.ReplaceAll(string(g), "-", " ")
		if strings.Contains(s, string(g)) || strings.Contains(s, spaced) {
			return g
		}
	}

	return Used
}

// GradeIndex returns the position of a grade on the ordered scale. Unknown
// grades report the used index.
func GradeIndex(g Grade) int {
	if i, ok := index[g]; ok {
		return i
	}
	return index[Used]
}

// Distance returns the number of steps between two grades on the scale.
func Distance(a, b Grade) int {
	d := GradeIndex(a) - GradeIndex(b)
	if d < 0 {
		d = -d
	}
	return d
}

// Scale returns the full ordered grade list, best to worst.
func Scale() []Grade {
	out := make([]Grade, len(ordered))
	copy(out, ordered)
	return out
}
