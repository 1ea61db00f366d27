package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/mfenderov/article-search/pkg/models"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Client wraps the Elasticsearch client with article mirror operations.
type Client struct {
	es    *elasticsearch.Client
	index string
}

// New creates a new Elasticsearch client.
func New(config Config) (*Client, error) {
	if config.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: config.Index,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexMapping defines the ES index mapping for articles.
var indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "integer" },
			"url": { "type": "keyword" },
			"title": { "type": "text", "analyzer": "english" },
			"subtitle": { "type": "text", "analyzer": "english" },
			"text": { "type": "text", "analyzer": "english" },
			"keywords": { "type": "text", "analyzer": "english" },
			"claps": { "type": "integer" },
			"author_name": { "type": "keyword" },
			"author_url": { "type": "keyword" },
			"reading_time": { "type": "keyword" },
			"num_images": { "type": "integer" },
			"image_urls": { "type": "keyword", "index": false },
			"num_external_links": { "type": "integer" }
		}
	}
}`

// CreateIndex creates the index with proper mapping.
func (c *Client) CreateIndex(ctx context.Context) error {
	// Check if index exists
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		// Index already exists
		return nil
	}

	// Create index
	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

// DeleteIndex removes the index.
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// DocumentID is the ES document ID of an article. It is derived from the
// URL, so repeated rows for one URL collapse into a single mirrored document.
func DocumentID(a models.Article) string {
	return models.GenerateArticleID(a.URL)
}

// IndexArticle indexes a single article.
func (c *Client) IndexArticle(ctx context.Context, a models.Article) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal article: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(DocumentID(a)),
	)
	if err != nil {
		return fmt.Errorf("failed to index article: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing article (status %d): %s", res.StatusCode, res.String())
	}

	return nil
}

// BulkStats reports the outcome of IndexArticles.
type BulkStats struct {
	Indexed uint64
	Failed  uint64
}

// IndexArticles indexes articles through the bulk API.
func (c *Client) IndexArticles(ctx context.Context, articles []models.Article) (BulkStats, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: c.es,
		Index:  c.index,
	})
	if err != nil {
		return BulkStats{}, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for _, a := range articles {
		data, err := json.Marshal(a)
		if err != nil {
			return BulkStats{}, fmt.Errorf("failed to marshal article: %w", err)
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: DocumentID(a),
			Body:       bytes.NewReader(data),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					slog.Warn("bulk index failed", "id", item.DocumentID, "error", err)
					return
				}
				slog.Warn("bulk index failed", "id", item.DocumentID, "type", res.Error.Type, "reason", res.Error.Reason)
			},
		})
		if err != nil {
			return BulkStats{}, fmt.Errorf("failed to queue article: %w", err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return BulkStats{}, fmt.Errorf("failed to flush bulk indexer: %w", err)
	}

	stats := bi.Stats()
	return BulkStats{Indexed: stats.NumIndexed, Failed: stats.NumFailed}, nil
}

// Refresh forces an index refresh (useful for testing).
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// Hit is one search result with its BM25 score.
type Hit struct {
	Article models.Article
	Score   float64
}

// searchResponse represents ES search response structure.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64        `json:"_score"`
			Source models.Article `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// searchQuery builds a BM25 multi_match over the article text fields.
func searchQuery(query string, limit int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "subtitle", "text", "keywords^2"},
			},
		},
		"sort": []any{
			"_score",
			map[string]any{"claps": "desc"},
		},
		"track_scores": true,
		"size":         limit,
	}
}

// Search performs a BM25 text search on title, subtitle, text and keywords.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	data, err := json.Marshal(searchQuery(query, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	hits := make([]Hit, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		hits[i] = Hit{Article: hit.Source, Score: hit.Score}
	}

	return hits, nil
}

// getResponse represents ES get response structure.
type getResponse struct {
	Found  bool           `json:"found"`
	Source models.Article `json:"_source"`
}

// GetArticle retrieves an article by document ID. A missing document
// returns nil without error.
func (c *Client) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	res, err := c.es.Get(
		c.index,
		id,
		c.es.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}

	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !gr.Found {
		return nil, nil
	}

	return &gr.Source, nil
}
