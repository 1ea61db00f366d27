package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mfenderov/article-search/internal/corpus"
	"github.com/mfenderov/article-search/internal/scraper"
	"github.com/mfenderov/article-search/internal/storage"
)

var testPages = map[string]string{
	"/goroutines": `<html><head><title>Goroutines | Medium</title></head><body><article>
		<h1>Understanding Goroutines</h1>
		<a href="/@jane">Jane Doe</a>
		<p>Goroutines are lightweight threads managed by the Go runtime.</p>
		<button aria-label="clap">1.5K</button>
	</article></body></html>`,
	"/channels": `<html><head><title>Channels</title></head><body><article>
		<h1>Channel Patterns</h1>
		<p>Channels connect concurrent goroutines and carry values between them.</p>
	</article></body></html>`,
	"/blocked": `<html><head><title>Just a moment...</title></head><body></body></html>`,
}

func newTestServer(t *testing.T) (*httptest.Server, *hitCounter) {
	t.Helper()
	hits := &hitCounter{counts: make(map[string]int)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		page, ok := testPages[r.URL.Path]
		if !ok {
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server, hits
}

type hitCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (h *hitCounter) add(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[path]++
}

func (h *hitCounter) get(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[path]
}

type fakeArchive struct {
	articles  map[string]string
	meta      *storage.ScrapeMetadata
	snapshots map[string]string
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{articles: make(map[string]string), snapshots: make(map[string]string)}
}

func (f *fakeArchive) PutArticle(_ context.Context, prefix, filename, content string) error {
	f.articles[prefix+"/pages/"+filename] = content
	return nil
}

func (f *fakeArchive) PutMetadata(_ context.Context, _ string, meta storage.ScrapeMetadata) error {
	f.meta = &meta
	return nil
}

func (f *fakeArchive) PutSnapshot(_ context.Context, name, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	f.snapshots[name] = string(data)
	return nil
}

func testConfig(t *testing.T) Config {
	return Config{
		Scraper: scraper.Config{Delay: time.Millisecond, UserAgent: "test-agent"},
		Output:  filepath.Join(t.TempDir(), "articles.csv"),
		Resume:  true,
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	server, _ := newTestServer(t)
	cfg := testConfig(t)

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	urls := []string{
		server.URL + "/goroutines",
		server.URL + "/channels",
		server.URL + "/blocked",
		server.URL + "/missing",
		server.URL + "/goroutines",
	}
	result, err := p.Run(t.Context(), urls)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.Requested != 5 || result.Written != 2 || result.Blocked != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 5 requested, 2 written, 1 blocked, 1 failed", result)
	}
	if result.Prefix != "" {
		t.Errorf("Prefix = %q, want empty without archive", result.Prefix)
	}

	articles, err := corpus.Load(t.Context(), corpus.FileSource{Path: cfg.Output})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles in corpus, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Understanding Goroutines" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Author != "Jane Doe" {
		t.Errorf("Author = %q", first.Author)
	}
	if first.Claps != 1500 {
		t.Errorf("Claps = %d, want 1500", first.Claps)
	}
	if !strings.Contains(first.SearchText, "lightweight threads") {
		t.Errorf("SearchText = %q, should contain body text", first.SearchText)
	}
}

func TestPipeline_Resume(t *testing.T) {
	server, hits := newTestServer(t)
	cfg := testConfig(t)

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := p.Run(t.Context(), []string{server.URL + "/goroutines"}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	result, err := p.Run(t.Context(), []string{server.URL + "/goroutines", server.URL + "/channels"})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if result.Skipped != 1 || result.Written != 1 {
		t.Errorf("result = %+v, want 1 skipped, 1 written", result)
	}
	if n := hits.get("/goroutines"); n != 1 {
		t.Errorf("/goroutines fetched %d times, want 1", n)
	}

	urls, err := corpus.ScrapedURLs(t.Context(), cfg.Output)
	if err != nil {
		t.Fatalf("ScrapedURLs() error = %v", err)
	}
	if len(urls) != 2 {
		t.Errorf("corpus has %d URLs, want 2", len(urls))
	}
}

func TestPipeline_NoResumeTruncates(t *testing.T) {
	server, _ := newTestServer(t)
	cfg := testConfig(t)

	p, _ := New(cfg)
	if _, err := p.Run(t.Context(), []string{server.URL + "/goroutines", server.URL + "/channels"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cfg.Resume = false
	p, _ = New(cfg)
	result, err := p.Run(t.Context(), []string{server.URL + "/channels"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", result.Skipped)
	}

	articles, err := corpus.Load(t.Context(), corpus.FileSource{Path: cfg.Output})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("expected 1 article after truncation, got %d", len(articles))
	}
}

func TestPipeline_Limit(t *testing.T) {
	server, _ := newTestServer(t)
	cfg := testConfig(t)
	cfg.Limit = 1

	p, _ := New(cfg)
	result, err := p.Run(t.Context(), []string{server.URL + "/goroutines", server.URL + "/channels"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Written != 1 {
		t.Errorf("Written = %d, want 1", result.Written)
	}
}

func TestPipeline_Archive(t *testing.T) {
	server, _ := newTestServer(t)
	cfg := testConfig(t)
	cfg.Snapshot = "latest.csv"
	archive := newFakeArchive()

	p, _ := New(cfg, WithArchive(archive))
	result, err := p.Run(t.Context(), []string{server.URL + "/goroutines", server.URL + "/channels"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Prefix != storage.RunPrefix(result.RunID) {
		t.Errorf("Prefix = %q, want %q", result.Prefix, storage.RunPrefix(result.RunID))
	}
	if len(archive.articles) != 2 {
		t.Errorf("archived %d articles, want 2", len(archive.articles))
	}
	for key, doc := range archive.articles {
		if !strings.HasPrefix(key, result.Prefix+"/pages/") || !strings.HasSuffix(key, ".md") {
			t.Errorf("unexpected archive key %q", key)
		}
		if !strings.HasPrefix(doc, "# ") {
			t.Errorf("archived document should start with a heading, got %q", doc)
		}
	}

	if archive.meta == nil || archive.meta.ArticleCount != 2 || archive.meta.RunID != result.RunID {
		t.Errorf("metadata = %+v", archive.meta)
	}
	if !strings.HasPrefix(archive.snapshots["latest.csv"], "url,title,") {
		t.Errorf("snapshot should hold the corpus CSV, got %q", archive.snapshots["latest.csv"])
	}

	event := result.CompleteEvent(cfg.Output)
	if event.RunID != result.RunID || event.Articles != 2 || event.Output != cfg.Output {
		t.Errorf("CompleteEvent() = %+v", event)
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	server, hits := newTestServer(t)
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := New(cfg)
	_, err := p.Run(ctx, []string{server.URL + "/goroutines"})
	if err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if hits.get("/goroutines") != 0 {
		t.Error("no page should be fetched after cancellation")
	}
}

func TestNew_RequiresOutput(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New() without output should fail")
	}
}

func TestReadURLs(t *testing.T) {
	input := `
# reading list
https://medium.com/a

  https://medium.com/b
#https://medium.com/skipped
`
	urls, err := ReadURLs(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadURLs() error = %v", err)
	}
	want := []string{"https://medium.com/a", "https://medium.com/b"}
	if len(urls) != len(want) {
		t.Fatalf("ReadURLs() = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}
