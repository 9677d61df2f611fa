package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relist-ai/comps-cli/internal/model"
)

func TestResolveExplicit(t *testing.T) {
	tests := []struct {
		name string
		item model.ItemContext
		want Category
	}{
		{"canonical id", model.ItemContext{Category: "trading_cards"}, TradingCards},
		{"synonym", model.ItemContext{Category: "Watches"}, Watches},
		{"shoes synonym", model.ItemContext{Category: "Shoes"}, Sneakers},
		{"unrecognized falls through keywords", model.ItemContext{Category: "Vintage Turntable Audio"}, AudioEquipment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.item, nil))
		})
	}
}

func TestResolvePrecedence(t *testing.T) {
	comps := []model.Comp{{Title: "Omega Seamaster Automatic Watch"}}

	// Explicit field wins over everything.
	item := model.ItemContext{Category: "sneakers", Categories: []string{"watches"}}
	assert.Equal(t, Sneakers, Resolve(item, comps))

	// Category list wins over comp titles.
	item = model.ItemContext{Categories: []string{"trading cards"}}
	assert.Equal(t, TradingCards, Resolve(item, comps))

	// Comp titles as last resort.
	assert.Equal(t, Watches, Resolve(model.ItemContext{}, comps))

	// Nothing resolvable falls back to general.
	assert.Equal(t, General, Resolve(model.ItemContext{}, nil))
}

func TestResolveTitlesMajority(t *testing.T) {
	comps := []model.Comp{
		{Title: "Nike Air Jordan 1 Retro High Sneaker"},
		{Title: "Jordan 4 Bred size 10"},
		{Title: "Seiko automatic movement watch"},
	}
	assert.Equal(t, Sneakers, Resolve(model.ItemContext{}, comps))
}

func TestLookupFallback(t *testing.T) {
	general := Lookup(General)
	assert.Equal(t, general, Lookup(Category("no_such_category")))

	// Category sensitivity contract: watches weight model dominant,
	// trading cards weight condition dominant.
	assert.Greater(t, Lookup(Watches).Validation.Model, Lookup(Watches).Validation.Condition)
	assert.Greater(t, Lookup(TradingCards).Validation.Condition, Lookup(TradingCards).Validation.Model)
	assert.Greater(t, Lookup(TradingCards).Variant.Grade, Lookup(TradingCards).Variant.Color)
	assert.Greater(t, Lookup(Sneakers).Variant.Color, Lookup(Sneakers).Variant.Edition)
}

func TestVariantWeightsFor(t *testing.T) {
	w := Lookup(Sneakers).Variant
	assert.Equal(t, w.Color, w.For("colorway"))
	assert.Equal(t, w.Size, w.For("size"))
	assert.InDelta(t, 0.10, w.For("unheard-of-attribute"), 0.0001)
}

func TestValidateWeights(t *testing.T) {
	for c, w := range All() {
		assert.NoError(t, ValidateWeights(w), "built-in table for %s", c)
	}

	bad := Weights{Validation: ValidationWeights{Brand: -1}}
	err := ValidateWeights(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brand weight")
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")

	yaml := `
watches:
  validation:
    brand: 0.15
    model: 0.40
    variant: 0.15
    condition: 0.10
    recency: 0.05
    price_outlier: 0.10
  variant:
    color: 0.20
    edition: 0.35
    material: 0.45
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	orig := Lookup(Watches)
	t.Cleanup(func() { tables[Watches] = orig })

	require.NoError(t, LoadOverrides(path))
	assert.InDelta(t, 0.40, Lookup(Watches).Validation.Model, 0.0001)

	// Unknown categories are rejected.
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("made_up_category:\n  validation:\n    brand: 0.5\n"), 0o600))
	assert.Error(t, LoadOverrides(bad))
}
