package elasticsearch

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mfenderov/article-search/pkg/models"
)

func skipIfNoES(t *testing.T) {
	if os.Getenv("SKIP_ES_TESTS") == "1" {
		t.Skip("Skipping ES tests (SKIP_ES_TESTS=1)")
	}

	// Try to connect to ES
	client, err := New(Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     "test-skip-check",
	})
	if err != nil {
		t.Skipf("Skipping ES tests: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !client.Ping(ctx) {
		t.Skip("Skipping ES tests: Elasticsearch not available")
	}
}

func newTestClient(t *testing.T, index string) *Client {
	t.Helper()
	client, err := New(Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     index,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	client.DeleteIndex(ctx)
	if err := client.CreateIndex(ctx); err != nil {
		t.Fatalf("CreateIndex() error = %v", err)
	}
	t.Cleanup(func() { client.DeleteIndex(context.Background()) })
	return client
}

func TestNew_RequiresIndex(t *testing.T) {
	if _, err := New(Config{Addresses: []string{"http://localhost:9200"}}); err == nil {
		t.Error("New() without index should fail")
	}
}

func TestDocumentID(t *testing.T) {
	a := models.Article{ID: 1, URL: "https://medium.com/a"}
	b := models.Article{ID: 2, URL: "https://medium.com/a"}

	if DocumentID(a) != DocumentID(b) {
		t.Error("articles with the same URL should share a document ID")
	}
	if len(DocumentID(a)) != 16 {
		t.Errorf("DocumentID() = %q, want 16 hex chars", DocumentID(a))
	}
}

func TestSearchQuery(t *testing.T) {
	data, err := json.Marshal(searchQuery("go channels", 7))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	body := string(data)
	for _, want := range []string{`"query":"go channels"`, `"size":7`, `"claps":"desc"`, `"title^2"`} {
		if !strings.Contains(body, want) {
			t.Errorf("query %s missing %s", body, want)
		}
	}
}

func TestClient_Connect(t *testing.T) {
	skipIfNoES(t)

	client, err := New(Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     "article-search-test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !client.Ping(context.Background()) {
		t.Error("Ping() should return true for running ES")
	}
}

func TestClient_CreateIndexIdempotent(t *testing.T) {
	skipIfNoES(t)

	client := newTestClient(t, "article-search-test-create")

	// Creating again should not error
	if err := client.CreateIndex(context.Background()); err != nil {
		t.Fatalf("CreateIndex() second call error = %v", err)
	}
}

func TestClient_IndexAndSearch(t *testing.T) {
	skipIfNoES(t)

	client := newTestClient(t, "article-search-test-search")
	ctx := context.Background()

	articles := []models.Article{
		{ID: 0, URL: "https://medium.com/install", Title: "Installing Go", Text: "Run go install to install the toolchain.", Claps: 10},
		{ID: 1, URL: "https://medium.com/config", Title: "Configuring services", Text: "Configure the application using environment variables.", Claps: 20},
		{ID: 2, URL: "https://medium.com/users", Title: "Users API", Text: "The users endpoint returns a list of all users.", Claps: 30},
	}

	stats, err := client.IndexArticles(ctx, articles)
	if err != nil {
		t.Fatalf("IndexArticles() error = %v", err)
	}
	if stats.Indexed != 3 || stats.Failed != 0 {
		t.Errorf("IndexArticles() stats = %+v, want 3 indexed", stats)
	}

	client.Refresh(ctx)

	hits, err := client.Search(ctx, "install", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) == 0 || hits[0].Article.URL != "https://medium.com/install" {
		t.Errorf("Search('install') = %+v, want the install article first", hits)
	}
	if len(hits) > 0 && hits[0].Score <= 0 {
		t.Errorf("Search('install') score = %v, want > 0", hits[0].Score)
	}

	hits, err = client.Search(ctx, "users", 10)
	if err != nil {
		t.Fatalf("Search('users') error = %v", err)
	}
	if len(hits) == 0 || hits[0].Article.Claps != 30 {
		t.Errorf("Search('users') = %+v, want the users article", hits)
	}
}

func TestClient_GetArticle(t *testing.T) {
	skipIfNoES(t)

	client := newTestClient(t, "article-search-test-get")
	ctx := context.Background()

	a := models.Article{
		URL:    "https://medium.com/test",
		Title:  "Test Page",
		Text:   "Test content for get operation.",
		Author: "Jane",
	}
	if err := client.IndexArticle(ctx, a); err != nil {
		t.Fatalf("IndexArticle() error = %v", err)
	}

	result, err := client.GetArticle(ctx, DocumentID(a))
	if err != nil {
		t.Fatalf("GetArticle() error = %v", err)
	}
	if result == nil {
		t.Fatal("GetArticle() returned nil")
	}
	if result.URL != a.URL || result.Author != "Jane" {
		t.Errorf("GetArticle() = %+v, want %+v", result, a)
	}

	missing, err := client.GetArticle(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("GetArticle(missing) error = %v", err)
	}
	if missing != nil {
		t.Error("GetArticle(missing) should return nil")
	}
}
