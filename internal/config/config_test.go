package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Corpus.Path == "" {
		t.Error("Corpus.Path should have a default")
	}
	if cfg.Search.MaxFeatures != 5000 || cfg.Search.NgramMax != 2 {
		t.Errorf("Search = %+v, want 5000 features and bigrams", cfg.Search)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("Search.DefaultLimit = %d, want 10", cfg.Search.DefaultLimit)
	}
	if cfg.Scraper.Delay != 2*time.Second {
		t.Errorf("Scraper.Delay = %v, want 2s", cfg.Scraper.Delay)
	}
	if cfg.Scraper.FollowLinks {
		t.Error("Scraper.FollowLinks should be off by default")
	}
	if len(cfg.Elasticsearch.Addresses) != 1 {
		t.Errorf("Elasticsearch.Addresses = %v", cfg.Elasticsearch.Addresses)
	}
	if cfg.MCP.Name != "article-search" {
		t.Errorf("MCP.Name = %q", cfg.MCP.Name)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Defaults()
	cfg.Elasticsearch.Password = "secret"

	redacted := cfg.Redacted()
	if redacted.Storage.SecretAccessKey == cfg.Storage.SecretAccessKey {
		t.Error("storage secret should be masked")
	}
	if redacted.Elasticsearch.Password == "secret" {
		t.Error("elasticsearch password should be masked")
	}
	if redacted.Storage.AccessKeyID != cfg.Storage.AccessKeyID {
		t.Error("access key ID should be kept")
	}

	redacted.Elasticsearch.Addresses[0] = "changed"
	if cfg.Elasticsearch.Addresses[0] == "changed" {
		t.Error("Redacted should not share the addresses slice")
	}

	var empty Config
	if empty.Redacted().Elasticsearch.Password != "" {
		t.Error("empty password should stay empty")
	}
}
