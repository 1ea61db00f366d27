package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrEndpointRequired = errors.New("endpoint is required")
	ErrBucketRequired   = errors.New("bucket is required")
)

const (
	scrapesPrefix   = "scrapes"
	snapshotsPrefix = "snapshots"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "article-search"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client wraps the MinIO/S3 client for article archive and corpus snapshot
// operations.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, ErrEndpointRequired
	}
	if config.Bucket == "" {
		return nil, ErrBucketRequired
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// RunPrefix returns the object prefix of one scrape run.
func RunPrefix(runID string) string {
	return path.Join(scrapesPrefix, runID)
}

// ArchivedArticle is one entry of a run's metadata.
type ArchivedArticle struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	File  string `json:"file"`
}

// ScrapeMetadata holds information about a scrape run.
type ScrapeMetadata struct {
	RunID        string            `json:"run_id"`
	Timestamp    string            `json:"timestamp"`
	ArticleCount int               `json:"article_count"`
	Failed       int               `json:"failed"`
	Articles     []ArchivedArticle `json:"articles"`
}

// PutArticle writes an article's Markdown rendition under prefix/pages.
func (c *Client) PutArticle(ctx context.Context, prefix, filename, content string) error {
	objectName := path.Join(prefix, "pages", filename)
	reader := strings.NewReader(content)

	_, err := c.minioClient.PutObject(ctx, c.bucket, objectName, reader, int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/markdown",
	})
	if err != nil {
		return fmt.Errorf("failed to put article: %w", err)
	}
	return nil
}

// PutMetadata writes the run metadata JSON to S3.
func (c *Client) PutMetadata(ctx context.Context, prefix string, meta ScrapeMetadata) error {
	objectName := path.Join(prefix, "metadata.json")

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	reader := bytes.NewReader(data)
	_, err = c.minioClient.PutObject(ctx, c.bucket, objectName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put metadata: %w", err)
	}
	return nil
}

// ListArticles returns the archived article files under a prefix.
func (c *Client) ListArticles(ctx context.Context, prefix string) ([]string, error) {
	pagesPrefix := path.Join(prefix, "pages") + "/"
	var files []string

	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    pagesPrefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if strings.HasSuffix(object.Key, ".md") {
			// Return just the filename, not the full path
			files = append(files, path.Base(object.Key))
		}
	}

	return files, nil
}

// GetArticle reads an archived article from S3.
func (c *Client) GetArticle(ctx context.Context, prefix, filename string) (string, error) {
	data, err := c.get(ctx, path.Join(prefix, "pages", filename))
	if err != nil {
		return "", fmt.Errorf("failed to get article: %w", err)
	}
	return string(data), nil
}

// GetMetadata reads the run metadata from S3.
func (c *Client) GetMetadata(ctx context.Context, prefix string) (*ScrapeMetadata, error) {
	data, err := c.get(ctx, path.Join(prefix, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	var meta ScrapeMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}

// PutSnapshot uploads a local corpus CSV as snapshots/{name}.
func (c *Client) PutSnapshot(ctx context.Context, name, filePath string) error {
	_, err := c.minioClient.FPutObject(ctx, c.bucket, SnapshotKey(name), filePath, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	return nil
}

// GetSnapshot downloads snapshots/{name}.
func (c *Client) GetSnapshot(ctx context.Context, name string) ([]byte, error) {
	data, err := c.get(ctx, SnapshotKey(name))
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return data, nil
}

// SnapshotKey returns the object key of a named corpus snapshot.
func SnapshotKey(name string) string {
	return path.Join(snapshotsPrefix, name)
}

func (c *Client) get(ctx context.Context, objectName string) ([]byte, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	return io.ReadAll(object)
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}
