package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAliases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Grade
	}{
		{"brand new", "Brand New", New},
		{"mint", "MINT", LikeNew},
		{"refurbished", "refurbished", VeryGood},
		{"manufacturer refurbished", "Manufacturer Refurbished", LikeNew},
		{"nwt", "NWT", NewWithTags},
		{"pre-owned", "Pre-Owned", Used},
		{"factory sealed", "factory sealed", New},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeSubstring(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Grade
	}{
		{"exact grade", "like-new", LikeNew},
		{"spaced grade", "New without box", NewWithoutBox},
		{"specific beats general", "new with tags attached", NewWithTags},
		{"very good not good", "in very good shape", VeryGood},
		{"embedded", "Used - item shows wear", Used},
		{"parts", "for parts or not working", ForPartsNotWorking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	assert.Equal(t, Used, Normalize(""))
	assert.Equal(t, Used, Normalize("completely unrecognizable text"))
}

func TestGradeIndexOrdering(t *testing.T) {
	// Ordering is a contract: better grades come earlier.
	assert.Equal(t, 0, GradeIndex(New))
	assert.Less(t, GradeIndex(NewWithBox), GradeIndex(OpenBox))
	assert.Less(t, GradeIndex(LikeNew), GradeIndex(Good))
	assert.Equal(t, len(Scale())-1, GradeIndex(ForPartsNotWorking))

	// Unknown grades fall back to the used index.
	assert.Equal(t, GradeIndex(Used), GradeIndex(Grade("no-such-grade")))
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, Distance(New, New))
	assert.Equal(t, 2, Distance(New, NewWithBox))
	assert.Equal(t, 4, Distance(New, NewWithoutBox))
	assert.Equal(t, Distance(Good, New), Distance(New, Good))
}
