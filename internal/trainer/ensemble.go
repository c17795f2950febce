package trainer

import (
	"context"
	"math/rand"
	"runtime"
	"sort"

	"fjacquet/spendcat/internal/models"

	"github.com/jbrukh/bayesian"
	"golang.org/x/sync/errgroup"
)

// document is one vectorized training example.
type document struct {
	terms []string
	label models.CategoryLabel
}

// ensemble is a bag of naive Bayes classifiers, each fitted on a bootstrap
// sample of the training documents. Members only read their state when
// scoring, so an ensemble is safe for concurrent use once fitted.
type ensemble struct {
	classes []bayesian.Class
	members []*bayesian.Classifier
}

// memberSeed derives a distinct, reproducible seed for member i.
func memberSeed(seed int64, i int) int64 {
	return seed + int64(i+1)*7919
}

// fitEnsemble fits n members in parallel. classes must hold at least two
// labels and include every document label. tick is called once per fitted
// member and may be nil.
func fitEnsemble(ctx context.Context, docs []document, classes []models.CategoryLabel, n int, seed int64, tick func()) (*ensemble, error) {
	e := &ensemble{
		classes: make([]bayesian.Class, len(classes)),
		members: make([]*bayesian.Classifier, n),
	}
	for i, c := range classes {
		e.classes[i] = bayesian.Class(c)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(memberSeed(seed, i)))
			cl := bayesian.NewClassifierTfIdf(e.classes...)
			for range docs {
				d := docs[rng.Intn(len(docs))]
				if len(d.terms) == 0 {
					continue
				}
				cl.Learn(d.terms, bayesian.Class(d.label))
			}
			cl.ConvertTermsFreqToTfIdf()
			e.members[i] = cl
			if tick != nil {
				tick()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return e, nil
}

// vote is one class and its share of member votes.
type vote struct {
	label models.CategoryLabel
	share float64
}

// predict returns every class that received a vote, ordered by descending
// share and then by label.
func (e *ensemble) predict(terms []string) []vote {
	counts := make(map[bayesian.Class]int, len(e.classes))
	for _, m := range e.members {
		_, inx, _ := m.LogScores(terms)
		counts[e.classes[inx]]++
	}

	votes := make([]vote, 0, len(counts))
	for class, count := range counts {
		votes = append(votes, vote{
			label: models.CategoryLabel(class),
			share: float64(count) / float64(len(e.members)),
		})
	}
	sort.Slice(votes, func(i, j int) bool {
		if votes[i].share != votes[j].share {
			return votes[i].share > votes[j].share
		}
		return votes[i].label < votes[j].label
	})
	return votes
}
