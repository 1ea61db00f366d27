package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/mfenderov/article-search/pkg/models"
)

// Writer appends articles to a corpus CSV file, one flushed row at a time so
// an interrupted scrape keeps everything written so far.
type Writer struct {
	path string
	file *os.File
	csv  *csv.Writer
}

// NewWriter opens path for appending. When resume is false the file is
// truncated. The header is written whenever the file starts out empty.
func NewWriter(path string, resume bool) (*Writer, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !resume {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus for writing: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat corpus: %w", err)
	}

	w := &Writer{path: path, file: f, csv: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := w.writeRecord(Columns); err != nil {
			f.Close()
			return nil, err
		}
	}
	return w, nil
}

// Append writes one article row.
func (w *Writer) Append(a models.Article) error {
	return w.writeRecord(Record(a))
}

func (w *Writer) writeRecord(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush row: %w", err)
	}
	return nil
}

// Path returns the file being written.
func (w *Writer) Path() string {
	return w.path
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Record renders an article in Columns order. Newlines inside text fields
// become spaces.
func Record(a models.Article) []string {
	flat := func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, "\r", ""), "\n", " ")
	}
	return []string{
		a.URL,
		flat(a.Title),
		flat(a.Subtitle),
		flat(a.Text),
		strconv.Itoa(a.NumImages),
		a.ImageURLs,
		strconv.Itoa(a.NumExternalLinks),
		flat(a.Author),
		a.AuthorURL,
		strconv.Itoa(a.Claps),
		a.ReadingTime,
		flat(a.Keywords),
	}
}

// ScrapedURLs returns the set of URLs already present in the corpus at
// path. A missing or empty file yields an empty set.
func ScrapedURLs(ctx context.Context, path string) (map[string]bool, error) {
	urls := make(map[string]bool)

	articles, err := Load(ctx, FileSource{Path: path})
	if errors.Is(err, ErrDataUnavailable) || errors.Is(err, fs.ErrNotExist) {
		return urls, nil
	}
	if err != nil {
		return nil, err
	}

	for _, a := range articles {
		urls[a.URL] = true
	}
	return urls, nil
}
