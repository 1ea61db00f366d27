package search

import (
	"strings"

	"github.com/kljensen/snowball"

	"github.com/mfenderov/article-search/internal/textproc"
)

const (
	// DefaultMaxFeatures is the vocabulary size used when Options leaves it unset.
	DefaultMaxFeatures = 5000

	// MaxFeaturesCeiling bounds the vocabulary regardless of configuration.
	MaxFeaturesCeiling = 50000

	// DefaultNgramMax indexes unigrams and bigrams.
	DefaultNgramMax = 2

	minTokenRunes = 2
)

// Options controls tokenization and vocabulary selection.
type Options struct {
	// MaxFeatures caps the vocabulary. Zero or negative means
	// DefaultMaxFeatures; values above MaxFeaturesCeiling are clamped.
	MaxFeatures int

	// NgramMax is the longest n-gram indexed. Values below 1 mean
	// DefaultNgramMax.
	NgramMax int

	// StopWords are dropped before n-grams are formed. Nil means the
	// English list; use an empty map to keep every token.
	StopWords map[string]bool

	// Stem applies the Snowball English stemmer to every token.
	Stem bool
}

// DefaultOptions returns English stop words, unigrams plus bigrams and a
// 5000-term vocabulary.
func DefaultOptions() Options {
	return Options{
		MaxFeatures: DefaultMaxFeatures,
		NgramMax:    DefaultNgramMax,
		StopWords:   textproc.StopWords(),
	}
}

func (o Options) withDefaults() Options {
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = DefaultMaxFeatures
	}
	o.MaxFeatures = min(o.MaxFeatures, MaxFeaturesCeiling)
	if o.NgramMax < 1 {
		o.NgramMax = DefaultNgramMax
	}
	if o.StopWords == nil {
		o.StopWords = textproc.StopWords()
	}
	return o
}

// tokenizer turns text into the terms counted by the index. The same
// tokenizer must be used at build and query time.
type tokenizer struct {
	stop     map[string]bool
	stem     bool
	ngramMax int
}

func newTokenizer(o Options) tokenizer {
	return tokenizer{stop: o.StopWords, stem: o.Stem, ngramMax: o.NgramMax}
}

// terms returns unigrams followed by higher-order n-grams built from
// adjacent tokens that survived stop-word removal.
func (t tokenizer) terms(text string) []string {
	words := textproc.Words(text, minTokenRunes)
	tokens := words[:0]
	for _, w := range words {
		if t.stop[w] {
			continue
		}
		if t.stem {
			if stemmed, err := snowball.Stem(w, "english", true); err == nil && stemmed != "" {
				w = stemmed
			}
		}
		tokens = append(tokens, w)
	}

	terms := make([]string, 0, len(tokens)*t.ngramMax)
	terms = append(terms, tokens...)
	for n := 2; n <= t.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
