package categorizer

import (
	"context"
	"errors"
	"testing"

	"fjacquet/spendcat/internal/logging"
	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/store"
	"fjacquet/spendcat/internal/textutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordStrategy_DefaultTable(t *testing.T) {
	s := NewKeywordStrategy(nil, "", logging.NewMockLogger())

	tests := []struct {
		name        string
		description string
		merchant    string
		want        models.CategoryLabel
		confidence  float64
	}{
		{"uber", "Uber ride to work", "", models.CategoryTransportation, 0.85},
		{"merchant only", "", "Netflix", models.CategoryEntertainment, 0.85},
		{"case and accents", "CAFÉ du coin", "", models.CategoryDining, 0.85},
		{"first category wins", "amazon grocery order", "", models.CategoryShopping, 0.85},
		{"no match", "Wire transfer to savings", "", models.CategoryOther, 0.6},
		{"empty", "  ", "", models.CategoryOther, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := textutils.ExtractFeatures(models.TransactionRecord{Description: tt.description, Merchant: tt.merchant})
			got, err := s.Predict(context.Background(), text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.confidence, got.Confidence)
		})
	}
}

func TestKeywordStrategy_Alternatives(t *testing.T) {
	s := NewKeywordStrategy(nil, "", nil)
	ctx := context.Background()

	match, _ := s.Predict(ctx, "uber ride")
	assert.Equal(t, []models.CategoryLabel{models.CategoryOther}, match.AlternativeCategories)
	assert.Equal(t, models.SourceKeyword, match.Source)

	miss, _ := s.Predict(ctx, "wire transfer")
	require.NotNil(t, miss.AlternativeCategories)
	assert.Empty(t, miss.AlternativeCategories)

	empty, _ := s.Predict(ctx, "")
	assert.Equal(t, models.SourceEmpty, empty.Source)
}

func TestKeywordStrategy_Deterministic(t *testing.T) {
	s := NewKeywordStrategy(nil, "", nil)
	first, _ := s.Predict(context.Background(), "hotel booking")
	for i := 0; i < 20; i++ {
		again, _ := s.Predict(context.Background(), "hotel booking")
		assert.Equal(t, first, again)
	}
}

func TestKeywordStrategy_FromStore(t *testing.T) {
	mockStore := &store.MockCategoryStore{
		Config: models.CategoriesConfig{
			Categories: []models.CategoryConfig{
				{Name: "Pets", Keywords: []string{"Vet", "PetCo"}},
				{Name: "Rent", Keywords: []string{"landlord"}},
			},
		},
	}
	s := NewKeywordStrategy(mockStore, "Misc", logging.NewMockLogger())

	got, err := s.Predict(context.Background(), "petco store")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryLabel("Pets"), got.Category)
	assert.Equal(t, []models.CategoryLabel{"Misc"}, got.AlternativeCategories)

	got, _ = s.Predict(context.Background(), "uber ride")
	assert.Equal(t, models.CategoryLabel("Misc"), got.Category)

}

func TestKeywordStrategy_StoreErrorUsesDefaults(t *testing.T) {
	logger := logging.NewMockLogger()
	s := NewKeywordStrategy(&store.MockCategoryStore{LoadError: errors.New("boom")}, "", logger)

	got, _ := s.Predict(context.Background(), "spotify premium")
	assert.Equal(t, models.CategoryEntertainment, got.Category)
	assert.NotEmpty(t, logger.GetEntriesByLevel("WARN"))
}
