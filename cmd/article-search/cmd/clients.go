package cmd

import (
	"context"
	"fmt"

	"github.com/mfenderov/article-search/internal/config"
	"github.com/mfenderov/article-search/internal/corpus"
	"github.com/mfenderov/article-search/internal/elasticsearch"
	"github.com/mfenderov/article-search/internal/search"
	"github.com/mfenderov/article-search/internal/storage"
)

func newStorageClient(cfg config.Config) (*storage.Client, error) {
	client, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

func newESClient(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return client, nil
}

// corpusSource reads from an object storage snapshot when one is
// configured, else from the local CSV.
func corpusSource(cfg config.Config) (corpus.Source, error) {
	if cfg.Corpus.Snapshot == "" {
		return corpus.FileSource{Path: cfg.Corpus.Path}, nil
	}
	client, err := newStorageClient(cfg)
	if err != nil {
		return nil, err
	}
	return corpus.ObjectSource{Store: client, Name: cfg.Corpus.Snapshot}, nil
}

func searchOptions(cfg config.Config) search.Options {
	opts := search.DefaultOptions()
	if cfg.Search.MaxFeatures > 0 {
		opts.MaxFeatures = cfg.Search.MaxFeatures
	}
	if cfg.Search.NgramMax > 0 {
		opts.NgramMax = cfg.Search.NgramMax
	}
	opts.Stem = cfg.Search.Stem
	return opts
}

// defaultLimit is the configured result count, bounded to the engine maximum.
func defaultLimit(cfg config.Config) int {
	if cfg.Search.DefaultLimit < 1 {
		return search.DefaultLimit
	}
	return min(cfg.Search.DefaultLimit, search.MaxLimit)
}

// loadEngine builds a search engine over the configured corpus and loads
// the first snapshot.
func loadEngine(ctx context.Context, cfg config.Config) (*search.Engine, error) {
	src, err := corpusSource(cfg)
	if err != nil {
		return nil, err
	}

	engine, err := search.NewEngine(src, searchOptions(cfg))
	if err != nil {
		return nil, err
	}
	if _, err := engine.Reload(ctx); err != nil {
		return nil, err
	}
	return engine, nil
}
