package category

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ValidationWeights are the per-criterion importance weights for one
// category. They feed the aggregate score directly: matched criteria
// contribute confidence×weight, and PriceOutlier is the one term that can
// subtract. The sum is near 1.0 by design but not exactly — the outlier
// term sits on top of the four positive terms and the final score is
// clamped, which is how the tables were tuned.
type ValidationWeights struct {
	Brand        float64 `yaml:"brand" json:"brand"`
	Model        float64 `yaml:"model" json:"model"`
	Variant      float64 `yaml:"variant" json:"variant"`
	Condition    float64 `yaml:"condition" json:"condition"`
	Recency      float64 `yaml:"recency" json:"recency"`
	PriceOutlier float64 `yaml:"price_outlier" json:"price_outlier"`
}

// VariantWeights rank which variant sub-attribute dominates buyer valuation
// in a category: trading cards live and die on grade, sneakers on colorway,
// phones on storage.
type VariantWeights struct {
	Color    float64 `yaml:"color" json:"color"`
	Size     float64 `yaml:"size" json:"size"`
	Edition  float64 `yaml:"edition" json:"edition"`
	Material float64 `yaml:"material" json:"material"`
	Storage  float64 `yaml:"storage" json:"storage"`
	Grade    float64 `yaml:"grade" json:"grade"`
}

// For returns the weight for a variant attribute key. Colorway is an alias
// for color. Attribute keys outside the table get a small non-zero weight so
// an unanticipated extra still participates instead of vanishing.
func (v VariantWeights) For(key string) float64 {
	switch key {
	case "color", "colorway":
		return v.Color
	case "size":
		return v.Size
	case "edition":
		return v.Edition
	case "material":
		return v.Material
	case "storage":
		return v.Storage
	case "grade":
		return v.Grade
	default:
		return 0.10
	}
}

// Weights bundles both tables for one category.
type Weights struct {
	Validation ValidationWeights `yaml:"validation" json:"validation"`
	Variant    VariantWeights    `yaml:"variant" json:"variant"`
}

// tables holds the tuned per-category weights. Configuration data, not
// runtime state.
var tables = map[Category]Weights{
	General: {
		Validation: ValidationWeights{Brand: 0.25, Model: 0.25, Variant: 0.10, Condition: 0.15, Recency: 0.10, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.35, Size: 0.30, Edition: 0.35},
	},
	Sneakers: {
		Validation: ValidationWeights{Brand: 0.20, Model: 0.25, Variant: 0.25, Condition: 0.10, Recency: 0.10, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.50, Size: 0.30, Edition: 0.20},
	},
	Watches: {
		Validation: ValidationWeights{Brand: 0.20, Model: 0.35, Variant: 0.15, Condition: 0.10, Recency: 0.05, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.20, Edition: 0.35, Material: 0.45},
	},
	TradingCards: {
		Validation: ValidationWeights{Brand: 0.10, Model: 0.20, Variant: 0.15, Condition: 0.35, Recency: 0.10, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.10, Edition: 0.30, Grade: 0.60},
	},
	LuxuryHandbags: {
		Validation: ValidationWeights{Brand: 0.30, Model: 0.20, Variant: 0.20, Condition: 0.15, Recency: 0.05, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.40, Size: 0.25, Material: 0.35},
	},
	DesignerClothing: {
		Validation: ValidationWeights{Brand: 0.30, Model: 0.15, Variant: 0.25, Condition: 0.15, Recency: 0.05, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.35, Size: 0.45, Material: 0.20},
	},
	ElectronicsPhones: {
		Validation: ValidationWeights{Brand: 0.15, Model: 0.30, Variant: 0.25, Condition: 0.15, Recency: 0.10, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.30, Edition: 0.20, Storage: 0.50},
	},
	ElectronicsGaming: {
		Validation: ValidationWeights{Brand: 0.15, Model: 0.30, Variant: 0.20, Condition: 0.15, Recency: 0.10, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.20, Edition: 0.40, Storage: 0.40},
	},
	VintageDenim: {
		Validation: ValidationWeights{Brand: 0.25, Model: 0.10, Variant: 0.30, Condition: 0.20, Recency: 0.05, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.25, Size: 0.50, Material: 0.25},
	},
	AudioEquipment: {
		Validation: ValidationWeights{Brand: 0.25, Model: 0.30, Variant: 0.10, Condition: 0.20, Recency: 0.05, PriceOutlier: 0.10},
		Variant:    VariantWeights{Color: 0.30, Edition: 0.40, Material: 0.30},
	},
}

// Lookup returns the weight tables for a category, falling back to the
// general-purpose defaults for unknown categories.
func Lookup(c Category) Weights {
	if w, ok := tables[c]; ok {
		return w
	}
	return tables[General]
}

// All returns a copy of the full weight table keyed by category.
func All() map[Category]Weights {
	out := make(map[Category]Weights, len(tables))
	for c, w := range tables {
		out[c] = w
	}
	return out
}

// LoadOverrides reads per-category weight overrides from a YAML file and
// merges them over the built-in tables. Unknown category keys are rejected
// so typos fail loudly instead of silently scoring with defaults.
func LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "category: read overrides")
	}

	var overrides map[Category]Weights
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return eris.Wrap(err, "category: parse overrides")
	}

	for c, w := range overrides {
		if _, ok := tables[c]; !ok {
			return eris.Errorf("category: unknown category %q in overrides", c)
		}
		if err := ValidateWeights(w); err != nil {
			return eris.Wrap(err, fmt.Sprintf("category: overrides for %s", c))
		}
		tables[c] = w
	}
	return nil
}

// ValidateWeights checks that a weight set is internally consistent.
func ValidateWeights(w Weights) error {
	var errs []string

	vw := w.Validation
	for name, v := range map[string]float64{
		"brand":         vw.Brand,
		"model":         vw.Model,
		"variant":       vw.Variant,
		"condition":     vw.Condition,
		"recency":       vw.Recency,
		"price_outlier": vw.PriceOutlier,
	} {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", name))
		}
	}
	if vw.Brand+vw.Model+vw.Variant+vw.Condition+vw.Recency <= 0 {
		errs = append(errs, "positive criterion weights must sum to > 0")
	}

	uw := w.Variant
	if uw.Color < 0 || uw.Size < 0 || uw.Edition < 0 || uw.Material < 0 || uw.Storage < 0 || uw.Grade < 0 {
		errs = append(errs, "variant weights must be >= 0")
	}
	if uw.Color+uw.Size+uw.Edition+uw.Material+uw.Storage+uw.Grade <= 0 {
		errs = append(errs, "variant weights must sum to > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("weight validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
