package trainer

import (
	"sort"
	"strings"
)

// Vectorizer turns normalized feature text into the bag of terms the
// ensemble members learn from. Terms are word unigrams up to n-grams of
// NgramMax words, after stop-word removal, restricted to a vocabulary fitted
// on the training corpus.
type Vectorizer struct {
	ngramMax int
	vocab    map[string]int
	terms    []string
	docFreq  []int
	numDocs  int
}

// Analyze returns every term of text, with duplicates, before vocabulary
// filtering. Single-character tokens and stop words are dropped unless that
// would leave nothing.
func Analyze(text string, ngramMax int) []string {
	raw := strings.Fields(text)
	if len(raw) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) < 2 || isStopWord(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		tokens = raw
	}

	if ngramMax < 1 {
		ngramMax = 1
	}
	terms := make([]string, 0, len(tokens)*ngramMax)
	for n := 1; n <= ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// FitVectorizer builds the vocabulary from texts. When more than maxFeatures
// distinct terms occur, the most frequent across the corpus are kept; ties go
// to the term seen in more documents, then to the lexically smaller term.
// maxFeatures <= 0 keeps every term.
func FitVectorizer(texts []string, maxFeatures, ngramMax int) *Vectorizer {
	totals := make(map[string]int)
	docs := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]bool)
		for _, term := range Analyze(text, ngramMax) {
			totals[term]++
			if !seen[term] {
				seen[term] = true
				docs[term]++
			}
		}
	}

	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		a, b := terms[i], terms[j]
		if totals[a] != totals[b] {
			return totals[a] > totals[b]
		}
		if docs[a] != docs[b] {
			return docs[a] > docs[b]
		}
		return a < b
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	docFreq := make([]int, len(terms))
	for i, term := range terms {
		docFreq[i] = docs[term]
	}
	return newVectorizer(terms, docFreq, len(texts), ngramMax)
}

func newVectorizer(terms []string, docFreq []int, numDocs, ngramMax int) *Vectorizer {
	v := &Vectorizer{
		ngramMax: ngramMax,
		vocab:    make(map[string]int, len(terms)),
		terms:    terms,
		docFreq:  docFreq,
		numDocs:  numDocs,
	}
	for i, term := range terms {
		v.vocab[term] = i
	}
	return v
}

// Transform returns the in-vocabulary terms of text, with duplicates.
func (v *Vectorizer) Transform(text string) []string {
	all := Analyze(text, v.ngramMax)
	out := all[:0]
	for _, term := range all {
		if _, ok := v.vocab[term]; ok {
			out = append(out, term)
		}
	}
	return out
}

// Size is the vocabulary size.
func (v *Vectorizer) Size() int {
	return len(v.terms)
}

// TermStat is a vocabulary term with its training document frequency.
type TermStat struct {
	Term      string  `json:"term"`
	Documents int     `json:"documents"`
	Share     float64 `json:"share"`
}

// TopTerms returns up to n terms found in the most training documents, ties
// broken by term. Share is the fraction of training documents containing it.
func (v *Vectorizer) TopTerms(n int) []TermStat {
	idx := make([]int, len(v.terms))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return v.docFreq[idx[a]] > v.docFreq[idx[b]]
	})
	if n >= 0 && len(idx) > n {
		idx = idx[:n]
	}

	out := make([]TermStat, len(idx))
	for i, j := range idx {
		out[i] = TermStat{Term: v.terms[j], Documents: v.docFreq[j]}
		if v.numDocs > 0 {
			out[i].Share = float64(v.docFreq[j]) / float64(v.numDocs)
		}
	}
	return out
}
