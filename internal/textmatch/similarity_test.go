package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase trim", "  Nike Air  ", "nike air"},
		{"collapse whitespace", "nike\t air\n max", "nike air max"},
		{"fold diacritics", "Hermès Béarn", "hermes bearn"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"exact", "Nike", "nike", 1.0},
		{"exact after fold", "Hermès", "hermes", 1.0},
		{"substring containment", "air", "air max", 0.5},   // 3/7 chars incl space → ratio of lengths
		{"empty left", "", "nike", 0},
		{"empty right", "nike", "", 0},
		{"both empty", "", "", 0},
		{"disjoint", "abcd", "wxyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if tt.name == "substring containment" {
				// "air" is 3 chars, "air max" is 7 → 3/7.
				assert.InDelta(t, 3.0/7.0, got, 0.001)
				return
			}
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestSimilarityLevenshtein(t *testing.T) {
	// "adidas" vs "addidas": one insertion over 7 chars → 1 - 1/7.
	got := Similarity("adidas", "addidas")
	assert.InDelta(t, 1.0-1.0/7.0, got, 0.001)

	// Symmetric for practical pairs.
	assert.InDelta(t, Similarity("rolex", "rollex"), Similarity("rollex", "rolex"), 0.0001)
}

func TestSimilarityDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, Similarity("omega seamaster", "omega speedmaster"), Similarity("omega seamaster", "omega speedmaster"))
	}
}

func TestFirstToken(t *testing.T) {
	assert.Equal(t, "nike", FirstToken("Nike Air Jordan 1 Retro"))
	assert.Equal(t, "", FirstToken("   "))
}

func TestContainsNormalized(t *testing.T) {
	assert.True(t, ContainsNormalized("Nike Air Jordan 1 Chicago", "jordan 1"))
	assert.False(t, ContainsNormalized("Nike Air Jordan 1", "yeezy"))
	assert.False(t, ContainsNormalized("anything", ""))
}
