// Package corpus reads and writes the article dataset: a CSV file with a
// header row, one scraped article per row.
package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mfenderov/article-search/internal/textproc"
	"github.com/mfenderov/article-search/pkg/models"
)

// ErrDataUnavailable is returned when the source is missing, empty or lacks
// a required column. Callers treat it as an empty corpus.
var ErrDataUnavailable = errors.New("corpus data unavailable")

// Columns lists the dataset columns in the order the writer emits them.
var Columns = []string{
	"url", "title", "subtitle", "text", "num_images", "image_urls",
	"num_external_links", "author_name", "author_url", "claps",
	"reading_time", "keywords",
}

var requiredColumns = []string{"url", "title"}

// Load reads every row of src into articles, in source order. Missing
// optional columns and empty cells take the defaults documented on
// models.Article.
func Load(ctx context.Context, src Source) ([]models.Article, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	articles, err := Read(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}

	slog.Debug("corpus loaded", "source", src.String(), "articles", len(articles))
	return articles, nil
}

// Read parses CSV data from r.
func Read(ctx context.Context, r io.Reader) ([]models.Article, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrDataUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrDataUnavailable, name)
		}
	}

	var articles []models.Article
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(articles)+1, err)
		}
		articles = append(articles, newArticle(len(articles), row{cols: cols, record: record}))
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrDataUnavailable)
	}
	return articles, nil
}

// row gives named access to a CSV record.
type row struct {
	cols   map[string]int
	record []string
}

func (r row) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return r.record[i]
}

func (r row) count(name string) int {
	v := strings.TrimSpace(r.get(name))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f < 0 {
			return 0
		}
		return int(f)
	}
	return max(n, 0)
}

func newArticle(id int, r row) models.Article {
	author := r.get("author_name")
	if strings.TrimSpace(author) == "" {
		author = models.UnknownAuthor
	}

	a := models.Article{
		ID:               id,
		URL:              r.get("url"),
		Title:            r.get("title"),
		Subtitle:         r.get("subtitle"),
		Text:             r.get("text"),
		Keywords:         r.get("keywords"),
		Claps:            textproc.ParseClaps(r.get("claps")),
		Author:           author,
		AuthorURL:        r.get("author_url"),
		ReadingTime:      r.get("reading_time"),
		NumImages:        r.count("num_images"),
		ImageURLs:        r.get("image_urls"),
		NumExternalLinks: r.count("num_external_links"),
	}
	a.SearchText = models.BuildSearchText(a)
	return a
}
