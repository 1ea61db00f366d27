package search

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"sort"

	"github.com/mfenderov/article-search/pkg/models"
)

const (
	// DefaultLimit is the number of results returned when the caller does
	// not ask for a specific count.
	DefaultLimit = 10

	// MaxLimit caps the number of results of a single query.
	MaxLimit = 50
)

// Result is one ranked article.
type Result struct {
	Article *models.Article `json:"article"`
	Score   float64         `json:"score"`
	Rank    int             `json:"rank"`
}

// SparseVector holds the non-zero weights of a document, ordered by term
// column.
type SparseVector struct {
	Terms   []int
	Weights []float64
}

// Norm returns the Euclidean length of v.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, w := range v.Weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

type posting struct {
	doc    int
	weight float64
}

// Index is an immutable TF-IDF vector space over a fixed slice of articles.
type Index struct {
	articles   []models.Article
	tok        tokenizer
	vocabulary map[string]int
	terms      []string
	idf        []float64
	vectors    []SparseVector
	postings   [][]posting
}

type termStat struct {
	term  string
	total int
	df    int
}

// Build tokenizes every article's search text, selects the vocabulary and
// computes one L2-normalized vector per article. vectors[i] belongs to
// articles[i]; result pointers refer into the articles slice, which must not
// be modified afterwards.
func Build(ctx context.Context, articles []models.Article, opts Options) (*Index, error) {
	opts = opts.withDefaults()
	ix := &Index{
		articles:   articles,
		tok:        newTokenizer(opts),
		vocabulary: make(map[string]int),
	}
	if len(articles) == 0 {
		return ix, nil
	}

	counts := make([]map[string]int, len(articles))
	stats := make(map[string]*termStat)
	for i := range articles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tf := make(map[string]int)
		for _, term := range ix.tok.terms(articles[i].SearchText) {
			tf[term]++
		}
		for term, c := range tf {
			s, ok := stats[term]
			if !ok {
				s = &termStat{term: term}
				stats[term] = s
			}
			s.total += c
			s.df++
		}
		counts[i] = tf
	}

	ranked := make([]*termStat, 0, len(stats))
	for _, s := range stats {
		ranked = append(ranked, s)
	}
	slices.SortFunc(ranked, func(a, b *termStat) int {
		return cmp.Or(
			cmp.Compare(b.total, a.total),
			cmp.Compare(b.df, a.df),
			cmp.Compare(a.term, b.term),
		)
	})
	if len(ranked) > opts.MaxFeatures {
		ranked = ranked[:opts.MaxFeatures]
	}

	// Columns are assigned alphabetically so vectors are stable across builds.
	slices.SortFunc(ranked, func(a, b *termStat) int { return cmp.Compare(a.term, b.term) })
	n := float64(len(articles))
	ix.terms = make([]string, len(ranked))
	ix.idf = make([]float64, len(ranked))
	for col, s := range ranked {
		ix.vocabulary[s.term] = col
		ix.terms[col] = s.term
		ix.idf[col] = 1 + math.Log((1+n)/(1+float64(s.df)))
	}

	ix.vectors = make([]SparseVector, len(articles))
	ix.postings = make([][]posting, len(ranked))
	for i, tf := range counts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := ix.weigh(tf)
		ix.vectors[i] = v
		for j, col := range v.Terms {
			ix.postings[col] = append(ix.postings[col], posting{doc: i, weight: v.Weights[j]})
		}
	}

	slog.Debug("search index built", "articles", len(articles), "vocabulary", len(ix.terms))
	return ix, nil
}

// weigh turns raw term counts into an L2-normalized TF-IDF vector.
// Out-of-vocabulary terms are dropped; with no known terms the zero vector
// is returned.
func (ix *Index) weigh(tf map[string]int) SparseVector {
	var v SparseVector
	for term := range tf {
		col, ok := ix.vocabulary[term]
		if !ok {
			continue
		}
		v.Terms = append(v.Terms, col)
	}
	if len(v.Terms) == 0 {
		return v
	}
	sort.Ints(v.Terms)

	v.Weights = make([]float64, len(v.Terms))
	for j, col := range v.Terms {
		v.Weights[j] = float64(tf[ix.terms[col]]) * ix.idf[col]
	}
	norm := v.Norm()
	for j := range v.Weights {
		v.Weights[j] /= norm
	}
	return v
}

func (ix *Index) vectorize(text string) SparseVector {
	tf := make(map[string]int)
	for _, term := range ix.tok.terms(text) {
		tf[term]++
	}
	return ix.weigh(tf)
}

// Query ranks the indexed articles against text and returns at most
// min(k, MaxLimit) results.
//
// Articles with a positive similarity are returned first and exclusively.
// When no article matches at all, every article is returned with score 0 so
// the caller still gets the most popular ones. Ties are broken by claps,
// then by article ID.
func (ix *Index) Query(text string, k int) ([]Result, error) {
	if ix == nil || ix.vocabulary == nil {
		return nil, ErrIndexNotBuilt
	}
	if k <= 0 || len(ix.articles) == 0 {
		return []Result{}, nil
	}

	scores := make([]float64, len(ix.articles))
	q := ix.vectorize(text)
	for j, col := range q.Terms {
		for _, p := range ix.postings[col] {
			scores[p.doc] += q.Weights[j] * p.weight
		}
	}

	candidates := make([]int, 0, len(ix.articles))
	for i, s := range scores {
		scores[i] = min(max(s, 0), 1)
		if scores[i] > 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		for i := range ix.articles {
			candidates = append(candidates, i)
		}
	}

	slices.SortFunc(candidates, func(a, b int) int {
		return cmp.Or(
			cmp.Compare(scores[b], scores[a]),
			cmp.Compare(ix.articles[b].Claps, ix.articles[a].Claps),
			cmp.Compare(ix.articles[a].ID, ix.articles[b].ID),
			cmp.Compare(a, b),
		)
	})

	limit := min(k, MaxLimit, len(candidates))
	results := make([]Result, limit)
	for r, doc := range candidates[:limit] {
		results[r] = Result{
			Article: &ix.articles[doc],
			Score:   scores[doc],
			Rank:    r + 1,
		}
	}
	return results, nil
}

// Len returns the number of indexed articles.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.articles)
}

// VocabularySize returns the number of scored terms.
func (ix *Index) VocabularySize() int {
	if ix == nil {
		return 0
	}
	return len(ix.terms)
}

// Vector returns the weights of article i. The result must not be modified.
func (ix *Index) Vector(i int) (SparseVector, bool) {
	if ix == nil || i < 0 || i >= len(ix.vectors) {
		return SparseVector{}, false
	}
	return ix.vectors[i], true
}

// Terms returns the vocabulary in column order.
func (ix *Index) Terms() []string {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.terms)
}
