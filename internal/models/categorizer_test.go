package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTaxonomy(t *testing.T) {
	tax := DefaultTaxonomy()

	assert.Equal(t, []CategoryLabel{
		CategoryShopping, CategoryGroceries, CategoryTransportation, CategoryEntertainment,
		CategoryUtilities, CategoryHealthcare, CategoryDining, CategoryTravel, CategoryOther,
	}, tax.Categories())
	assert.Equal(t, CategoryOther, tax.Other())
	assert.True(t, tax.Contains(CategoryDining))
	assert.False(t, tax.Contains("dining"), "Contains is exact")
	assert.False(t, tax.Contains("Food & Drink"))
}

func TestTaxonomy_Canonical(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		in     string
		want   CategoryLabel
		wantOK bool
	}{
		{"Dining", CategoryDining, true},
		{"  groceries ", CategoryGroceries, true},
		{"Transport", CategoryTransportation, true},
		{"food & drink", CategoryDining, true},
		{"Health & Fitness", CategoryHealthcare, true},
		{"Housing", CategoryUtilities, true},
		{"Pets", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := tax.Canonical(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTaxonomy(t *testing.T) {
	t.Run("other appended when absent", func(t *testing.T) {
		tax, err := NewTaxonomy([]string{"Food", "Fun"}, "Misc", nil)
		require.NoError(t, err)
		assert.Equal(t, []CategoryLabel{"Food", "Fun", "Misc"}, tax.Categories())
		assert.Equal(t, CategoryLabel("Misc"), tax.Other())
	})

	t.Run("other defaults to Other", func(t *testing.T) {
		tax, err := NewTaxonomy([]string{"Food"}, "", nil)
		require.NoError(t, err)
		assert.Equal(t, CategoryOther, tax.Other())
	})

	t.Run("duplicate category", func(t *testing.T) {
		_, err := NewTaxonomy([]string{"Food", "food"}, "Other", nil)
		assert.ErrorContains(t, err, "duplicate category")
	})

	t.Run("alias to unknown category", func(t *testing.T) {
		_, err := NewTaxonomy([]string{"Food"}, "Other", map[string]string{"Snacks": "Treats"})
		assert.ErrorContains(t, err, "unknown category")
	})

	t.Run("too small", func(t *testing.T) {
		_, err := NewTaxonomy(nil, "Other", nil)
		assert.Error(t, err)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		tax := DefaultTaxonomy()
		cats := tax.Categories()
		cats[0] = "Mutated"
		assert.Equal(t, CategoryShopping, tax.Categories()[0])
	})
}

func TestDefaultKeywordTable_CoversCategorySet(t *testing.T) {
	tax := DefaultTaxonomy()
	for _, row := range DefaultKeywordTable() {
		assert.True(t, tax.Contains(CategoryLabel(row.Name)), row.Name)
		assert.NotEmpty(t, row.Keywords, row.Name)
	}
}
