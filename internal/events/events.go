package events

import "time"

// PageFetchedEvent is sent by the scraper for every fetched article page.
type PageFetchedEvent struct {
	URL         string
	Body        []byte
	ContentType string
	FetchedAt   time.Time
}

// ScrapeCompleteEvent is sent when a scrape run has written its rows.
type ScrapeCompleteEvent struct {
	RunID     string    // Unique scrape run ID
	Output    string    // Corpus CSV the run appended to
	Prefix    string    // S3 prefix of the archive, empty when archiving is off
	Articles  int       // Number of articles written
	Timestamp time.Time // When the scrape completed
}

// IngestionCompleteEvent is sent when the corpus has been mirrored to
// Elasticsearch.
type IngestionCompleteEvent struct {
	Source   string        // Corpus that was ingested
	Indexed  int           // Number of articles indexed
	Failed   int           // Number of articles rejected by Elasticsearch
	Duration time.Duration // How long ingestion took
}
