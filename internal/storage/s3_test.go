package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty endpoint",
			config:  Config{Endpoint: "", Bucket: "test"},
			wantErr: ErrEndpointRequired,
		},
		{
			name:    "empty bucket",
			config:  Config{Endpoint: "localhost:9000", Bucket: ""},
			wantErr: ErrBucketRequired,
		},
		{
			name: "valid config",
			config: Config{
				Endpoint:        "localhost:9000",
				Bucket:          "test",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && client.Bucket() != tt.config.Bucket {
				t.Errorf("Bucket() = %q, want %q", client.Bucket(), tt.config.Bucket)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	if got := RunPrefix("0b1c"); got != "scrapes/0b1c" {
		t.Errorf("RunPrefix() = %q", got)
	}
	if got := SnapshotKey("latest.csv"); got != "snapshots/latest.csv" {
		t.Errorf("SnapshotKey() = %q", got)
	}
}

// TestIntegration_S3Operations tests actual S3 operations against MinIO.
// Skip if MinIO is not running.
func TestIntegration_S3Operations(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := New(Config{
		Endpoint:        endpoint,
		Bucket:          "article-search-test",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UseSSL:          false,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	// Try to ensure bucket - skip if MinIO is not available
	if err := client.EnsureBucket(ctx); err != nil {
		t.Skipf("MinIO not available, skipping integration test: %v", err)
	}

	prefix := RunPrefix("test-run")

	t.Run("PutArticle", func(t *testing.T) {
		content := "# Test Article\n\nThis is test content."
		if err := client.PutArticle(ctx, prefix, "abc123.md", content); err != nil {
			t.Fatalf("PutArticle() error = %v", err)
		}
	})

	t.Run("GetArticle", func(t *testing.T) {
		content, err := client.GetArticle(ctx, prefix, "abc123.md")
		if err != nil {
			t.Fatalf("GetArticle() error = %v", err)
		}
		expected := "# Test Article\n\nThis is test content."
		if content != expected {
			t.Errorf("GetArticle() = %q, want %q", content, expected)
		}
	})

	t.Run("Metadata", func(t *testing.T) {
		meta := ScrapeMetadata{
			RunID:        "test-run",
			Timestamp:    "2024-12-04T17:30:00Z",
			ArticleCount: 1,
			Articles:     []ArchivedArticle{{URL: "https://medium.com/a", Title: "A", File: "abc123.md"}},
		}
		if err := client.PutMetadata(ctx, prefix, meta); err != nil {
			t.Fatalf("PutMetadata() error = %v", err)
		}

		got, err := client.GetMetadata(ctx, prefix)
		if err != nil {
			t.Fatalf("GetMetadata() error = %v", err)
		}
		if got.RunID != "test-run" || got.ArticleCount != 1 || len(got.Articles) != 1 {
			t.Errorf("GetMetadata() = %+v", got)
		}
	})

	t.Run("ListArticles", func(t *testing.T) {
		files, err := client.ListArticles(ctx, prefix)
		if err != nil {
			t.Fatalf("ListArticles() error = %v", err)
		}
		if len(files) != 1 || files[0] != "abc123.md" {
			t.Errorf("ListArticles() = %v, want [abc123.md]", files)
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		csvPath := filepath.Join(t.TempDir(), "articles.csv")
		content := "url,title\nhttps://medium.com/a,A\n"
		if err := os.WriteFile(csvPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		if err := client.PutSnapshot(ctx, "test.csv", csvPath); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		data, err := client.GetSnapshot(ctx, "test.csv")
		if err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if string(data) != content {
			t.Errorf("GetSnapshot() = %q, want %q", data, content)
		}

		if _, err := client.GetSnapshot(ctx, "does-not-exist.csv"); err == nil {
			t.Error("GetSnapshot() of a missing key should fail")
		}
	})
}
