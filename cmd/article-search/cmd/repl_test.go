package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mfenderov/article-search/internal/config"
	"github.com/mfenderov/article-search/internal/search"
)

func testEngineConfig(t *testing.T) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "articles.csv")
	data := "url,title,claps\nhttps://medium.com/a,Rust ownership explained,10\nhttps://medium.com/b,Go interfaces explained,20\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write corpus: %v", err)
	}
	cfg := config.Defaults()
	cfg.Corpus.Path = path
	return cfg
}

func TestRepl(t *testing.T) {
	cfg := testEngineConfig(t)
	engine, err := loadEngine(t.Context(), cfg)
	if err != nil {
		t.Fatalf("loadEngine() error = %v", err)
	}

	in := strings.NewReader("\nrust ownership\nreload\nquit\ngo interfaces\n")
	var out bytes.Buffer
	if err := repl(t.Context(), engine, in, &out, 5); err != nil {
		t.Fatalf("repl() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Rust ownership explained") {
		t.Errorf("output should contain the matching article:\n%s", got)
	}
	if !strings.Contains(got, "Loaded 2 articles.") {
		t.Errorf("output should confirm the reload:\n%s", got)
	}
	if strings.Contains(got, "Go interfaces explained") {
		t.Errorf("queries after quit should not run:\n%s", got)
	}
}

func TestRepl_EOF(t *testing.T) {
	engine, err := loadEngine(t.Context(), testEngineConfig(t))
	if err != nil {
		t.Fatalf("loadEngine() error = %v", err)
	}

	var out bytes.Buffer
	if err := repl(t.Context(), engine, strings.NewReader("go"), &out, 5); err != nil {
		t.Fatalf("repl() error = %v", err)
	}
}

func TestPrintHits(t *testing.T) {
	hits := []hit{{Rank: 1, URL: "https://medium.com/a", Title: "A", Claps: 3, SimilarityScore: 0.5}}

	var text bytes.Buffer
	if err := printHits(&text, hits, "text"); err != nil {
		t.Fatalf("printHits() error = %v", err)
	}
	if !strings.Contains(text.String(), "Found 1 results") || !strings.Contains(text.String(), "0.5000") {
		t.Errorf("unexpected text output:\n%s", text.String())
	}

	var js bytes.Buffer
	if err := printHits(&js, hits, "json"); err != nil {
		t.Fatalf("printHits() error = %v", err)
	}
	var decoded []hit
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(decoded) != 1 || decoded[0].URL != "https://medium.com/a" {
		t.Errorf("decoded = %+v", decoded)
	}

	var empty bytes.Buffer
	printHits(&empty, nil, "text")
	if !strings.Contains(empty.String(), "No results found.") {
		t.Errorf("unexpected empty output: %q", empty.String())
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("storage.secret_access_key"); got != "ARTICLESEARCH_STORAGE_SECRET_ACCESS_KEY" {
		t.Errorf("envKey() = %q", got)
	}
}

func TestDefaultLimit(t *testing.T) {
	cfg := config.Defaults()
	for _, tt := range []struct{ configured, want int }{{0, 10}, {5, 5}, {500, 50}} {
		cfg.Search.DefaultLimit = tt.configured
		if got := defaultLimit(cfg); got != tt.want {
			t.Errorf("defaultLimit(%d) = %d, want %d", tt.configured, got, tt.want)
		}
	}
}

func TestRunSearch_RejectsBlankQuery(t *testing.T) {
	for _, query := range []string{"", "  \n"} {
		err := runSearch(searchCmd, []string{query})
		if !errors.Is(err, errEmptyQuery) {
			t.Errorf("runSearch(%q) error = %v, want %v", query, err, errEmptyQuery)
		}
	}
}

func TestESSearch_CapsLimit(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.Elasticsearch.Addresses = []string{srv.URL}

	if _, err := esSearch(t.Context(), cfg, "go", 500); err != nil {
		t.Fatalf("esSearch() error = %v", err)
	}
	if got := body["size"]; got != float64(search.MaxLimit) {
		t.Errorf("size = %v, want %d", got, search.MaxLimit)
	}
}
