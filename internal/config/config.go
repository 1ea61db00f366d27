package config

import "time"

// Config holds all application configuration.
type Config struct {
	Corpus        Corpus        `mapstructure:"corpus" yaml:"corpus"`
	Search        Search        `mapstructure:"search" yaml:"search"`
	Server        Server        `mapstructure:"server" yaml:"server"`
	Scraper       Scraper       `mapstructure:"scraper" yaml:"scraper"`
	Storage       Storage       `mapstructure:"storage" yaml:"storage"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	MCP           MCP           `mapstructure:"mcp" yaml:"mcp"`
}

// Corpus locates the article dataset.
type Corpus struct {
	Path     string `mapstructure:"path" yaml:"path"`         // Local CSV file
	Snapshot string `mapstructure:"snapshot" yaml:"snapshot"` // Object storage snapshot name; overrides Path when set
}

// Search holds index construction settings.
type Search struct {
	MaxFeatures  int  `mapstructure:"max_features" yaml:"max_features"`
	NgramMax     int  `mapstructure:"ngram_max" yaml:"ngram_max"`
	Stem         bool `mapstructure:"stem" yaml:"stem"`
	DefaultLimit int  `mapstructure:"default_limit" yaml:"default_limit"`
}

// Server holds HTTP API configuration.
type Server struct {
	Addr  string  `mapstructure:"addr" yaml:"addr"`
	Rate  float64 `mapstructure:"rate" yaml:"rate"` // Requests per second, 0 disables limiting
	Burst int     `mapstructure:"burst" yaml:"burst"`
}

// Scraper holds web scraping configuration.
type Scraper struct {
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent   string        `mapstructure:"user_agent" yaml:"user_agent"`
	Parallelism int           `mapstructure:"parallelism" yaml:"parallelism"`
	FollowLinks bool          `mapstructure:"follow_links" yaml:"follow_links"`
	MaxDepth    int           `mapstructure:"max_depth" yaml:"max_depth"`
}

// Storage holds S3/MinIO storage configuration.
type Storage struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses" yaml:"addresses"`
	Index     string   `mapstructure:"index" yaml:"index"`
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Version string `mapstructure:"version" yaml:"version"`
}

// Redacted returns a copy with credentials masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Storage.SecretAccessKey = mask(c.Storage.SecretAccessKey)
	c.Elasticsearch.Password = mask(c.Elasticsearch.Password)
	c.Elasticsearch.Addresses = append([]string(nil), c.Elasticsearch.Addresses...)
	return c
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Corpus: Corpus{
			Path: "medium_articles.csv",
		},
		Search: Search{
			MaxFeatures:  5000,
			NgramMax:     2,
			Stem:         false,
			DefaultLimit: 10,
		},
		Server: Server{
			Addr:  ":8000",
			Rate:  20,
			Burst: 40,
		},
		Scraper: Scraper{
			Delay:       2 * time.Second,
			Timeout:     15 * time.Second,
			UserAgent:   "", // Browser-like default from the scraper package
			Parallelism: 1,
			FollowLinks: false,
			MaxDepth:    1,
		},
		Storage: Storage{
			Endpoint:        "localhost:9002",
			Bucket:          "article-search",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		Elasticsearch: Elasticsearch{
			Addresses: []string{"http://localhost:9200"},
			Index:     "medium-articles",
		},
		MCP: MCP{
			Name:    "article-search",
			Version: "1.0.0",
		},
	}
}
