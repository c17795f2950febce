// Package trainer implements the trainable transaction classifier: a
// bag-of-n-grams vectorizer feeding a bagged ensemble of naive Bayes models,
// with a versioned artifact mirrored to durable storage.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"fjacquet/spendcat/internal/caterror"
	"fjacquet/spendcat/internal/logging"
	"fjacquet/spendcat/internal/models"
	"fjacquet/spendcat/internal/textutils"

	"github.com/google/uuid"
)

// ArtifactStore is the durable storage behind a Classifier. Load returns an
// error matching caterror.ErrArtifactNotFound when nothing was saved.
type ArtifactStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
}

// Options are the training hyper-parameters.
type Options struct {
	MaxFeatures  int
	NgramMax     int
	NEstimators  int
	TestFraction float64
	Seed         int64
}

// DefaultOptions returns the default hyper-parameters.
func DefaultOptions() Options {
	return Options{
		MaxFeatures:  5000,
		NgramMax:     2,
		NEstimators:  25,
		TestFraction: 0.2,
		Seed:         42,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxFeatures < 0 {
		o.MaxFeatures = 0
	}
	if o.NgramMax < 1 {
		o.NgramMax = d.NgramMax
	}
	if o.NEstimators < 1 {
		o.NEstimators = d.NEstimators
	}
	if o.TestFraction <= 0 || o.TestFraction >= 1 {
		o.TestFraction = d.TestFraction
	}
	return o
}

// TrainResult reports a successful training run.
type TrainResult struct {
	// Accuracy is measured on the held-out split, in [0,1].
	Accuracy float64
	Info     ModelInfo
}

// ProgressFunc is called as ensemble members finish fitting. It may be called
// from several goroutines.
type ProgressFunc func(done, total int)

// TrainOption customizes a single Train call.
type TrainOption func(*trainConfig)

type trainConfig struct {
	progress ProgressFunc
}

// WithProgress reports fitting progress to fn.
func WithProgress(fn ProgressFunc) TrainOption {
	return func(c *trainConfig) {
		c.progress = fn
	}
}

// Classifier is the trainable classifier. Predict is safe for concurrent use,
// including while Train runs; concurrent Train calls are serialized.
type Classifier struct {
	opts     Options
	taxonomy *models.Taxonomy
	store    ArtifactStore
	logger   logging.Logger

	model   atomic.Pointer[Model]
	trainMu sync.Mutex

	loadOnce sync.Once
	loadErr  error
}

// New creates an untrained classifier. store may be nil, in which case models
// live only in memory.
func New(taxonomy *models.Taxonomy, store ArtifactStore, logger logging.Logger, opts Options) *Classifier {
	if taxonomy == nil {
		taxonomy = models.DefaultTaxonomy()
	}
	return &Classifier{
		opts:     opts.withDefaults(),
		taxonomy: taxonomy,
		store:    store,
		logger:   logging.OrDefault(logger),
	}
}

// Train fits a new model on examples, persists it and makes it active. On any
// failure the previously active model, if any, stays in place.
func (c *Classifier) Train(ctx context.Context, examples []models.TrainingExample, options ...TrainOption) (TrainResult, error) {
	var cfg trainConfig
	for _, opt := range options {
		opt(&cfg)
	}

	c.trainMu.Lock()
	defer c.trainMu.Unlock()

	start := time.Now()
	texts, labels, err := c.prepare(examples)
	if err != nil {
		return TrainResult{}, err
	}
	classes := c.classesOf(labels)

	c.logger.Info("Training classifier",
		logging.Field{Key: logging.FieldCount, Value: len(texts)},
		logging.Field{Key: "classes", Value: len(classes)},
		logging.Field{Key: "estimators", Value: c.opts.NEstimators})

	fitIdx, testIdx := splitIndices(len(texts), c.opts.TestFraction, c.opts.Seed)

	var done atomic.Int32
	total := 2 * c.opts.NEstimators
	tick := func() {
		n := int(done.Add(1))
		if cfg.progress != nil {
			cfg.progress(n, total)
		}
	}

	eval, err := c.fit(ctx, pick(texts, fitIdx), pick(labels, fitIdx), classes, tick)
	if err != nil {
		return TrainResult{}, err
	}
	correct := 0
	for _, i := range testIdx {
		if eval.Predict(texts[i]).Category == labels[i] {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(testIdx))

	model, err := c.fit(ctx, texts, labels, classes, tick)
	if err != nil {
		return TrainResult{}, err
	}
	model.info = ModelInfo{
		ID:             uuid.NewString(),
		TrainedAt:      time.Now().UTC(),
		Classes:        classes,
		Examples:       len(texts),
		HeldOut:        len(testIdx),
		Accuracy:       accuracy,
		VocabularySize: model.vectorizer.Size(),
		Estimators:     c.opts.NEstimators,
		NgramMax:       c.opts.NgramMax,
	}

	if err := c.persist(ctx, model); err != nil {
		return TrainResult{}, err
	}
	c.model.Store(model)

	c.logger.Info("Classifier trained",
		logging.Field{Key: logging.FieldArtifactID, Value: model.info.ID},
		logging.Field{Key: logging.FieldAccuracy, Value: accuracy},
		logging.Field{Key: "vocabulary_size", Value: model.info.VocabularySize},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).String()})

	return TrainResult{Accuracy: accuracy, Info: model.Info()}, nil
}

// prepare validates examples and returns their feature texts and canonical labels.
func (c *Classifier) prepare(examples []models.TrainingExample) ([]string, []models.CategoryLabel, error) {
	if len(examples) < 2 {
		return nil, nil, &caterror.TrainingError{
			Reason: fmt.Sprintf("need at least 2 examples, got %d", len(examples)),
		}
	}

	texts := make([]string, len(examples))
	labels := make([]models.CategoryLabel, len(examples))
	distinct := make(map[models.CategoryLabel]bool)
	for i, ex := range examples {
		label, ok := c.taxonomy.Canonical(string(ex.Category))
		if !ok {
			return nil, nil, &caterror.TrainingError{
				Reason: fmt.Sprintf("example %d has unknown category %q", i+1, ex.Category),
			}
		}
		text := textutils.ExtractFeatures(ex.Record)
		if text == "" {
			return nil, nil, &caterror.TrainingError{
				Reason: fmt.Sprintf("example %d has no usable text", i+1),
				Err:    &caterror.InvalidInputError{Field: "description", Reason: "empty after normalization"},
			}
		}
		texts[i] = text
		labels[i] = label
		distinct[label] = true
	}

	if len(distinct) < 2 {
		return nil, nil, &caterror.TrainingError{
			Reason: fmt.Sprintf("need at least 2 distinct categories, got %d", len(distinct)),
		}
	}
	return texts, labels, nil
}

// classesOf returns the distinct labels in taxonomy order.
func (c *Classifier) classesOf(labels []models.CategoryLabel) []models.CategoryLabel {
	present := make(map[models.CategoryLabel]bool, len(labels))
	for _, l := range labels {
		present[l] = true
	}
	classes := make([]models.CategoryLabel, 0, len(present))
	for _, l := range c.taxonomy.Categories() {
		if present[l] {
			classes = append(classes, l)
		}
	}
	return classes
}

func (c *Classifier) fit(ctx context.Context, texts []string, labels []models.CategoryLabel, classes []models.CategoryLabel, tick func()) (*Model, error) {
	vec := FitVectorizer(texts, c.opts.MaxFeatures, c.opts.NgramMax)
	if vec.Size() == 0 {
		return nil, &caterror.TrainingError{Reason: "no features extracted from training text"}
	}

	docs := make([]document, len(texts))
	for i, text := range texts {
		docs[i] = document{terms: vec.Transform(text), label: labels[i]}
	}

	e, err := fitEnsemble(ctx, docs, classes, c.opts.NEstimators, c.opts.Seed, tick)
	if err != nil {
		return nil, &caterror.TrainingError{Reason: "fitting ensemble", Err: err}
	}

	return &Model{
		vectorizer: vec,
		ensemble:   e,
		exact:      exactTable(texts, labels),
	}, nil
}

// exactTable maps each training text to its most frequent label. Ties go to
// the lexically smaller label.
func exactTable(texts []string, labels []models.CategoryLabel) map[string]models.CategoryLabel {
	counts := make(map[string]map[models.CategoryLabel]int)
	for i, text := range texts {
		if counts[text] == nil {
			counts[text] = make(map[models.CategoryLabel]int)
		}
		counts[text][labels[i]]++
	}

	table := make(map[string]models.CategoryLabel, len(counts))
	for text, byLabel := range counts {
		var best models.CategoryLabel
		bestCount := 0
		for label, n := range byLabel {
			if n > bestCount || (n == bestCount && label < best) {
				best, bestCount = label, n
			}
		}
		table[text] = best
	}
	return table
}

func (c *Classifier) persist(ctx context.Context, m *Model) error {
	blob, err := EncodeArtifact(m)
	if err != nil {
		return &caterror.TrainingError{Reason: "encoding artifact", Err: err}
	}
	if c.store == nil {
		return nil
	}
	if err := c.store.Save(ctx, blob); err != nil {
		var storageErr *caterror.StorageError
		if errors.As(err, &storageErr) {
			return err
		}
		return &caterror.StorageError{Op: "save", Path: "model store", Err: err}
	}
	return nil
}

// Predict classifies normalized feature text (see textutils.ExtractFeatures).
// It returns a ModelNotTrainedError when no model was trained and none can be
// loaded from storage.
func (c *Classifier) Predict(text string) (models.PredictionResult, error) {
	if text == "" {
		return models.EmptyPrediction(c.taxonomy.Other()), nil
	}

	m, err := c.current()
	if err != nil {
		return models.PredictionResult{}, err
	}
	return m.Predict(text), nil
}

// Info returns metadata about the active model.
func (c *Classifier) Info() (ModelInfo, error) {
	m, err := c.current()
	if err != nil {
		return ModelInfo{}, err
	}
	return m.Info(), nil
}

// current returns the active model, loading it from storage on first use.
func (c *Classifier) current() (*Model, error) {
	if m := c.model.Load(); m != nil {
		return m, nil
	}

	c.loadOnce.Do(c.loadFromStore)

	if m := c.model.Load(); m != nil {
		return m, nil
	}
	return nil, &caterror.ModelNotTrainedError{Reason: "no trained model available", Err: c.loadErr}
}

func (c *Classifier) loadFromStore() {
	if c.store == nil {
		return
	}

	blob, err := c.store.Load(context.Background())
	if err != nil {
		if !errors.Is(err, caterror.ErrArtifactNotFound) {
			c.logger.WithError(err).Warn("Failed to load model artifact")
			c.loadErr = err
		}
		return
	}

	m, err := DecodeArtifact(blob)
	if err == nil {
		err = c.checkClasses(m)
	}
	if err != nil {
		c.loadErr = &caterror.StorageError{Op: "decode", Path: "model store", Err: err}
		c.logger.WithError(err).Warn("Stored model artifact is unusable")
		return
	}

	// A Train that finished first wins over the stored artifact.
	if c.model.CompareAndSwap(nil, m) {
		c.logger.Info("Loaded trained model",
			logging.Field{Key: logging.FieldArtifactID, Value: m.info.ID},
			logging.Field{Key: logging.FieldAccuracy, Value: m.info.Accuracy})
	}
}

// checkClasses rejects a model that can predict a label outside the
// configured category set, e.g. after the categories file was edited.
func (c *Classifier) checkClasses(m *Model) error {
	for _, class := range m.ensemble.classes {
		if !c.taxonomy.Contains(models.CategoryLabel(class)) {
			return fmt.Errorf("%w: class %q is not a configured category",
				caterror.ErrIncompatibleArtifact, class)
		}
	}
	return nil
}

// splitIndices shuffles 0..n-1 with seed and holds out max(1, round(frac*n))
// of them, always leaving at least one index to fit on.
func splitIndices(n int, frac float64, seed int64) (fit, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	held := int(math.Round(frac * float64(n)))
	if held < 1 {
		held = 1
	}
	if held > n-1 {
		held = n - 1
	}
	test = append([]int(nil), perm[:held]...)
	fit = append([]int(nil), perm[held:]...)
	sort.Ints(test)
	sort.Ints(fit)
	return fit, test
}

func pick[T any](items []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
