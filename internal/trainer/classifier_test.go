package trainer

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"fjacquet/spendcat/internal/caterror"
	"fjacquet/spendcat/internal/logging"
	"fjacquet/spendcat/internal/modelstore"
	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/textutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func example(desc, merchant string, category models.CategoryLabel) models.TrainingExample {
	return models.TrainingExample{
		Record:   models.TransactionRecord{Description: desc, Merchant: merchant},
		Category: category,
	}
}

// sampleExamples mixes labels from the default set and aliased ones.
func sampleExamples() []models.TrainingExample {
	return []models.TrainingExample{
		example("Weekly groceries", "Whole Foods", "Groceries"),
		example("Uber ride downtown", "Uber", "Transport"),
		example("Netflix subscription", "Netflix", "Entertainment"),
		example("McDonald's burger", "McDonald's", "Food & Drink"),
		example("McDonald's breakfast", "", "Food & Drink"),
		example("Online order", "Amazon", "Shopping"),
		example("Monthly rent", "Landlord", "Housing"),
		example("Gym membership", "Planet Fitness", "Health & Fitness"),
		example("Farmers market produce", "", "Groceries"),
		example("Movie tickets", "AMC", "Entertainment"),
	}
}

func newTestClassifier(t *testing.T, store ArtifactStore) *Classifier {
	t.Helper()
	opts := DefaultOptions()
	opts.NEstimators = 9
	return New(models.DefaultTaxonomy(), store, logging.NewMockLogger(), opts)
}

func TestClassifier_PredictUntrained(t *testing.T) {
	c := newTestClassifier(t, modelstore.NewMemoryStore())

	_, err := c.Predict("uber ride")
	require.Error(t, err)
	assert.True(t, caterror.IsModelNotTrained(err))

	_, err = c.Info()
	assert.True(t, caterror.IsModelNotTrained(err))
}

func TestClassifier_PredictEmptyText(t *testing.T) {
	c := newTestClassifier(t, nil)

	result, err := c.Predict("")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOther, result.Category)
	assert.Zero(t, result.Confidence)
}

func TestClassifier_TrainValidation(t *testing.T) {
	tests := []struct {
		name     string
		examples []models.TrainingExample
		contains string
	}{
		{
			name:     "single example",
			examples: []models.TrainingExample{example("Uber ride", "", "Transport")},
			contains: "at least 2 examples",
		},
		{
			name: "single category",
			examples: []models.TrainingExample{
				example("Uber ride", "", "Transport"),
				example("Lyft ride", "", "Transportation"),
			},
			contains: "at least 2 distinct categories",
		},
		{
			name: "unknown label",
			examples: []models.TrainingExample{
				example("Uber ride", "", "Transport"),
				example("Vet visit", "", "Pets"),
			},
			contains: "unknown category",
		},
		{
			name: "no usable text",
			examples: []models.TrainingExample{
				example("Uber ride", "", "Transport"),
				example(" $ ", "", "Shopping"),
			},
			contains: "no usable text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := modelstore.NewMemoryStore()
			c := newTestClassifier(t, store)

			_, err := c.Train(context.Background(), tt.examples)
			var trainErr *caterror.TrainingError
			require.ErrorAs(t, err, &trainErr)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Zero(t, store.Saves)

			_, err = c.Predict("uber ride")
			assert.True(t, caterror.IsModelNotTrained(err), "failed training must leave the classifier untrained")
		})
	}
}

func TestClassifier_TrainRoundTrip(t *testing.T) {
	store := modelstore.NewMemoryStore()
	c := newTestClassifier(t, store)
	examples := sampleExamples()
	tax := models.DefaultTaxonomy()

	var progress []int
	var mu sync.Mutex
	result, err := c.Train(context.Background(), examples, WithProgress(func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, done)
		assert.Equal(t, 18, total)
	}))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Accuracy, 0.0)
	assert.LessOrEqual(t, result.Accuracy, 1.0)
	assert.Equal(t, 2, result.Info.HeldOut)
	assert.Equal(t, 10, result.Info.Examples)
	assert.NotEmpty(t, result.Info.ID)
	assert.Len(t, progress, 18)
	assert.Equal(t, 1, store.Saves)

	for _, ex := range examples {
		want, _ := tax.Canonical(string(ex.Category))
		got, err := c.Predict(textutils.ExtractFeatures(ex.Record))
		require.NoError(t, err)
		assert.Equal(t, want, got.Category, ex.Record.Description)
		assert.Equal(t, 1.0, got.Confidence)
	}
}

func TestClassifier_PredictUnseenText(t *testing.T) {
	opts := DefaultOptions()
	c := New(models.DefaultTaxonomy(), nil, logging.NewMockLogger(), opts)

	result, err := c.Train(context.Background(), sampleExamples())
	require.NoError(t, err)

	text := textutils.ExtractFeatures(models.TransactionRecord{Description: "McDonald's lunch"})
	got, err := c.Predict(text)
	require.NoError(t, err)

	assert.Contains(t, result.Info.Classes, got.Category)
	assert.Equal(t, models.CategoryDining, got.Category)
	assert.Greater(t, got.Confidence, 0.0)
	assert.LessOrEqual(t, got.Confidence, 1.0)
	assert.NotContains(t, got.AlternativeCategories, got.Category)
	for _, alt := range got.AlternativeCategories {
		assert.Contains(t, result.Info.Classes, alt)
	}
}

func TestClassifier_PredictUnseenTextSmallSample(t *testing.T) {
	rows := []struct {
		desc  string
		label models.CategoryLabel
	}{
		{"Walmart groceries", "Groceries"},
		{"Uber ride to work", "Transport"},
		{"Netflix monthly subscription", "Entertainment"},
		{"Starbucks coffee", "Food & Drink"},
		{"Apple Store purchase", "Shopping"},
		{"Monthly rent payment", "Housing"},
		{"Amazon.com electronics", "Shopping"},
		{"Gas station fill up", "Transport"},
		{"Restaurant dinner", "Food & Drink"},
		{"Gym membership", "Health & Fitness"},
	}
	examples := make([]models.TrainingExample, len(rows))
	for i, r := range rows {
		examples[i] = example(r.desc, "", r.label)
	}

	c := New(models.DefaultTaxonomy(), nil, logging.NewMockLogger(), DefaultOptions())
	result, err := c.Train(context.Background(), examples)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Info.Examples)
	assert.Equal(t, 2, result.Info.HeldOut)
	assert.GreaterOrEqual(t, result.Accuracy, 0.0)
	assert.LessOrEqual(t, result.Accuracy, 1.0)

	for _, desc := range []string{"McDonald's lunch", "Coffee with friends", "Train ticket"} {
		got, err := c.Predict(textutils.ExtractFeatures(models.TransactionRecord{Description: desc}))
		require.NoError(t, err, desc)
		assert.Contains(t, result.Info.Classes, got.Category, desc)
		assert.Greater(t, got.Confidence, 0.0, desc)
		assert.LessOrEqual(t, got.Confidence, 1.0, desc)
		assert.NotContains(t, got.AlternativeCategories, got.Category, desc)
		for _, alt := range got.AlternativeCategories {
			assert.Contains(t, result.Info.Classes, alt, desc)
		}
	}
}

func TestClassifier_StorageFailureKeepsPreviousModel(t *testing.T) {
	store := modelstore.NewMemoryStore()
	c := newTestClassifier(t, store)
	ctx := context.Background()

	first, err := c.Train(ctx, sampleExamples())
	require.NoError(t, err)

	store.SaveErr = errors.New("disk full")
	_, err = c.Train(ctx, sampleExamples()[:4])
	var storageErr *caterror.StorageError
	require.ErrorAs(t, err, &storageErr)

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, first.Info.ID, info.ID)
}

func TestClassifier_CancelledTraining(t *testing.T) {
	c := newTestClassifier(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Train(ctx, sampleExamples())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = c.Predict("uber")
	assert.True(t, caterror.IsModelNotTrained(err))
}

func TestClassifier_LazyLoad(t *testing.T) {
	store := modelstore.NewMemoryStore()
	trained, err := newTestClassifier(t, store).Train(context.Background(), sampleExamples())
	require.NoError(t, err)

	fresh := newTestClassifier(t, store)
	info, err := fresh.Info()
	require.NoError(t, err)
	assert.Equal(t, trained.Info.ID, info.ID)
	assert.Equal(t, trained.Info.Classes, info.Classes)
	assert.Equal(t, trained.Info.TopTerms, info.TopTerms)
	require.NotEmpty(t, info.TopTerms)
	assert.LessOrEqual(t, len(info.TopTerms), 10)
	for i := 1; i < len(info.TopTerms); i++ {
		assert.GreaterOrEqual(t, info.TopTerms[i-1].Documents, info.TopTerms[i].Documents)
	}

	got, err := fresh.Predict(textutils.ExtractFeatures(sampleExamples()[2].Record))
	require.NoError(t, err)
	assert.Equal(t, models.CategoryEntertainment, got.Category)
	assert.Equal(t, models.SourceModel, got.Source)
}

func TestClassifier_LoadAttemptedOnce(t *testing.T) {
	store := modelstore.NewMemoryStore()
	_, err := newTestClassifier(t, store).Train(context.Background(), sampleExamples())
	require.NoError(t, err)

	store.LoadErr = errors.New("permission denied")
	logger := logging.NewMockLogger()
	c := New(models.DefaultTaxonomy(), store, logger, DefaultOptions())

	_, err = c.Predict("uber ride")
	require.True(t, caterror.IsModelNotTrained(err))
	assert.ErrorContains(t, err, "permission denied")
	assert.NotEmpty(t, logger.GetEntriesByLevel("WARN"))

	store.LoadErr = nil
	_, err = c.Predict("uber ride")
	assert.True(t, caterror.IsModelNotTrained(err), "storage is only consulted on first use")
}

func TestClassifier_IncompatibleStoredArtifact(t *testing.T) {
	store := modelstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), []byte("not a model")))

	c := newTestClassifier(t, store)
	_, err := c.Predict("uber ride")
	require.True(t, caterror.IsModelNotTrained(err))
	assert.ErrorIs(t, err, caterror.ErrIncompatibleArtifact)
}

func TestClassifier_StoredClassesOutsideTaxonomy(t *testing.T) {
	store := modelstore.NewMemoryStore()
	_, err := newTestClassifier(t, store).Train(context.Background(), []models.TrainingExample{
		example("walmart groceries", "", models.CategoryGroceries),
		example("kroger weekly", "", models.CategoryGroceries),
		example("uber ride", "", models.CategoryTransportation),
		example("lyft ride", "", models.CategoryTransportation),
	})
	require.NoError(t, err)

	edited, err := models.NewTaxonomy([]string{"Shopping", "Transportation"}, "Other", nil)
	require.NoError(t, err)
	logger := logging.NewMockLogger()
	c := New(edited, store, logger, DefaultOptions())

	for _, text := range []string{"walmart groceries", "kroger weekly", "uber ride"} {
		got, err := c.Predict(text)
		require.Error(t, err, text)
		assert.True(t, caterror.IsModelNotTrained(err))
		assert.ErrorIs(t, err, caterror.ErrIncompatibleArtifact)
		assert.Empty(t, got.Category)
	}
	assert.True(t, logger.HasEntry("WARN", "Stored model artifact is unusable"))

	_, err = c.Info()
	assert.True(t, caterror.IsModelNotTrained(err))
}

func TestClassifier_ConcurrentPredictDuringTrain(t *testing.T) {
	c := newTestClassifier(t, modelstore.NewMemoryStore())
	ctx := context.Background()

	before, err := c.Train(ctx, sampleExamples())
	require.NoError(t, err)

	retrain := append(sampleExamples(),
		example("Electric bill", "PG&E", "Utilities"),
		example("Flight to Denver", "United", "Travel"),
	)

	text := textutils.ExtractFeatures(models.TransactionRecord{Description: "Uber ride downtown", Merchant: "Uber"})

	var wg sync.WaitGroup
	results := make(chan models.PredictionResult, 200)
	errs := make(chan error, 200)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				r, err := c.Predict(text)
				if err != nil {
					errs <- err
					continue
				}
				results <- r
			}
		}()
	}

	after, err := c.Train(ctx, retrain)
	require.NoError(t, err)
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Errorf("unexpected predict error: %v", err)
	}
	for r := range results {
		assert.Equal(t, models.CategoryTransportation, r.Category)
		assert.Equal(t, 1.0, r.Confidence)
	}

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, after.Info.ID, info.ID)
	assert.NotEqual(t, before.Info.ID, info.ID)
}

func TestArtifact_RoundTrip(t *testing.T) {
	c := newTestClassifier(t, nil)
	_, err := c.Train(context.Background(), sampleExamples())
	require.NoError(t, err)
	m := c.model.Load()

	blob, err := EncodeArtifact(m)
	require.NoError(t, err)
	assert.Equal(t, "SPCM", string(blob[:4]))

	decoded, err := DecodeArtifact(blob)
	require.NoError(t, err)
	assert.Equal(t, m.Info(), decoded.Info())

	for _, text := range []string{"uber ride downtown uber", "movie night", "mcdonalds lunch", "gas station"} {
		assert.Equal(t, m.Predict(text), decoded.Predict(text), text)
	}
}

func TestArtifact_Header(t *testing.T) {
	c := newTestClassifier(t, nil)
	_, err := c.Train(context.Background(), sampleExamples())
	require.NoError(t, err)
	blob, err := EncodeArtifact(c.model.Load())
	require.NoError(t, err)

	t.Run("future version", func(t *testing.T) {
		bad := append([]byte(nil), blob...)
		binary.BigEndian.PutUint16(bad[4:6], ArtifactVersion+1)
		_, err := DecodeArtifact(bad)
		assert.ErrorIs(t, err, caterror.ErrIncompatibleArtifact)
	})

	t.Run("wrong magic", func(t *testing.T) {
		bad := append([]byte("XXXX"), blob[4:]...)
		_, err := DecodeArtifact(bad)
		assert.ErrorIs(t, err, caterror.ErrIncompatibleArtifact)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := DecodeArtifact(blob[:3])
		assert.ErrorIs(t, err, caterror.ErrIncompatibleArtifact)

		_, err = DecodeArtifact(blob[:headerSize+5])
		require.Error(t, err)
		assert.NotErrorIs(t, err, caterror.ErrIncompatibleArtifact)
	})
}

func TestSplitIndices(t *testing.T) {
	tests := []struct {
		n        int
		wantTest int
	}{
		{n: 2, wantTest: 1},
		{n: 3, wantTest: 1},
		{n: 10, wantTest: 2},
		{n: 13, wantTest: 3},
	}
	for _, tt := range tests {
		fit, test := splitIndices(tt.n, 0.2, 42)
		assert.Len(t, test, tt.wantTest)
		assert.Len(t, fit, tt.n-tt.wantTest)

		again, againTest := splitIndices(tt.n, 0.2, 42)
		assert.Equal(t, fit, again)
		assert.Equal(t, test, againTest)
	}
}

func TestExactTable_MajorityLabel(t *testing.T) {
	table := exactTable(
		[]string{"coffee", "coffee", "coffee", "uber"},
		[]models.CategoryLabel{"Dining", "Groceries", "Dining", "Transportation"},
	)
	assert.Equal(t, models.CategoryDining, table["coffee"])
	assert.Equal(t, models.CategoryTransportation, table["uber"])
}
