package corpus

import (
	"math"

	"github.com/mfenderov/article-search/internal/textproc"
	"github.com/mfenderov/article-search/pkg/models"
)

// Stats summarizes a loaded corpus.
type Stats struct {
	TotalArticles      int     `json:"total_articles" yaml:"total_articles"`
	TotalClaps         int     `json:"total_claps" yaml:"total_claps"`
	AvgClaps           float64 `json:"avg_claps" yaml:"avg_claps"`
	UniqueAuthors      int     `json:"unique_authors" yaml:"unique_authors"`
	ArticlesWithImages int     `json:"articles_with_images" yaml:"articles_with_images"`
}

// ComputeStats aggregates articles. The average is rounded to 2 decimals.
func ComputeStats(articles []models.Article) Stats {
	s := Stats{TotalArticles: len(articles)}
	if len(articles) == 0 {
		return s
	}

	authors := make(map[string]bool)
	for _, a := range articles {
		s.TotalClaps += a.Claps
		authors[a.Author] = true
		if a.NumImages > 0 {
			s.ArticlesWithImages++
		}
	}
	s.UniqueAuthors = len(authors)
	s.AvgClaps = math.Round(float64(s.TotalClaps)/float64(len(articles))*100) / 100
	return s
}

// TopWords returns the n most frequent words across titles and body text.
func TopWords(articles []models.Article, n int) []textproc.WordCount {
	texts := make([]string, 0, len(articles))
	for _, a := range articles {
		texts = append(texts, a.Title+" "+a.Text)
	}
	return textproc.TopWords(texts, n)
}
