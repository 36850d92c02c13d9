package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DEFAULT_MAX_FEATURES = 5000
	MIN_TOKEN_LENGTH     = 2
)

var (
	ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain no terms")
	ErrNotFitted       = errors.New("vectorizer is not fitted")
)

// Vectorizer maps cleaned text to L2-normalised TF-IDF vectors. Once fitted
// it is read-only and safe for concurrent use.
type Vectorizer struct {
	MaxFeatures int

	// Terms is sorted; a term's position is its feature index.
	Terms []string
	IDF   []float64

	vocabulary map[string]int
}

func NewVectorizer(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DEFAULT_MAX_FEATURES
	}
	return &Vectorizer{MaxFeatures: maxFeatures}
}

// NewFittedVectorizer rebuilds a vectorizer from persisted terms and weights.
func NewFittedVectorizer(maxFeatures int, terms []string, idf []float64) (*Vectorizer, error) {
	if len(terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("vectorizer has %d terms but %d idf weights", len(terms), len(idf))
	}
	if !sort.StringsAreSorted(terms) {
		return nil, errors.New("vectorizer terms are not sorted")
	}

	v := &Vectorizer{
		MaxFeatures: maxFeatures,
		Terms:       terms,
		IDF:         idf,
	}
	v.indexTerms()
	if len(v.vocabulary) != len(terms) {
		return nil, errors.New("vectorizer terms contain duplicates")
	}
	return v, nil
}

// Tokenize splits cleaned text into terms. Single-letter tokens are not
// terms.
func Tokenize(doc string) []string {
	fields := strings.Fields(doc)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= MIN_TOKEN_LENGTH {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Fit learns the vocabulary and IDF weights. When the corpus has more
// distinct terms than MaxFeatures, the most frequent terms across the corpus
// are kept, ties broken alphabetically.
func (v *Vectorizer) Fit(docs []string) error {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			termFreq[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	if len(termFreq) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}

	if len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if termFreq[terms[i]] != termFreq[terms[j]] {
				return termFreq[terms[i]] > termFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		// smoothed: as if one extra document contained every term
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	v.Terms = terms
	v.IDF = idf
	v.indexTerms()
	return nil
}

func (v *Vectorizer) indexTerms() {
	v.vocabulary = make(map[string]int, len(v.Terms))
	for i, term := range v.Terms {
		v.vocabulary[term] = i
	}
}

func (v *Vectorizer) Fitted() bool {
	return len(v.Terms) > 0 && v.vocabulary != nil
}

func (v *Vectorizer) NumFeatures() int {
	return len(v.Terms)
}

func (v *Vectorizer) Index(term string) (int, bool) {
	i, ok := v.vocabulary[term]
	return i, ok
}

// Transform vectorizes one cleaned document. Out-of-vocabulary terms are
// ignored; a document with no known terms yields the zero vector.
func (v *Vectorizer) Transform(doc string) ([]float64, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}

	vec := make([]float64, len(v.Terms))
	for _, tok := range Tokenize(doc) {
		if i, ok := v.vocabulary[tok]; ok {
			vec[i]++
		}
	}
	floats.Mul(vec, v.IDF)

	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec, nil
}

// TransformAll returns a len(docs) x NumFeatures design matrix.
func (v *Vectorizer) TransformAll(docs []string) (*mat.Dense, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents to transform")
	}

	x := mat.NewDense(len(docs), len(v.Terms), nil)
	for i, doc := range docs {
		vec, err := v.Transform(doc)
		if err != nil {
			return nil, err
		}
		x.SetRow(i, vec)
	}
	return x, nil
}

func (v *Vectorizer) FitTransform(docs []string) (*mat.Dense, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.TransformAll(docs)
}
