package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// UnknownAuthor is the author recorded for articles without an author_name.
const UnknownAuthor = "Unknown"

// Article represents one scraped article as stored in the corpus CSV.
type Article struct {
	ID               int    `json:"id"` // Position within the loaded snapshot
	URL              string `json:"url"`
	Title            string `json:"title"`
	Subtitle         string `json:"subtitle"`
	Text             string `json:"text"`
	Keywords         string `json:"keywords"`
	Claps            int    `json:"claps"`
	Author           string `json:"author_name"`
	AuthorURL        string `json:"author_url"`
	ReadingTime      string `json:"reading_time"`
	NumImages        int    `json:"num_images"`
	ImageURLs        string `json:"image_urls"`
	NumExternalLinks int    `json:"num_external_links"`
	SearchText       string `json:"-"` // Derived at load time, indexing only
}

// BuildSearchText joins the text fields that participate in search.
func BuildSearchText(a Article) string {
	return strings.Join([]string{a.Title, a.Subtitle, a.Text, a.Keywords}, " ")
}

// GenerateArticleID creates a deterministic ID from URL.
// The ID is a SHA-256 hash (first 16 chars) of the URL.
func GenerateArticleID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
