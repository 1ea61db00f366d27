package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfenderov/article-search/internal/config"
)

const envPrefix = "ARTICLESEARCH"

var (
	cfgFile    string
	corpusPath string
	verbose    bool
	cfg        config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "article-search",
	Short: "Article search: TF-IDF similarity search over scraped Medium articles",
	Long: `article-search scrapes Medium articles into a CSV corpus and finds the
articles most similar to a free-text query using TF-IDF and cosine similarity.

Commands:
  scrape  Scrape article URLs into the corpus
  search  Search the corpus once
  repl    Search the corpus interactively
  serve   Start the HTTP API
  mcp     Start the MCP server
  ingest  Mirror the corpus into Elasticsearch
  stats   Show corpus statistics
  archive Show an archived scrape run
  config  Print the effective configuration`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "corpus CSV file (overrides corpus.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/article-search")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// ARTICLESEARCH_CORPUS_PATH -> corpus.path
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	for _, key := range []string{
		"corpus.path",
		"corpus.snapshot",
		"search.max_features",
		"search.ngram_max",
		"search.stem",
		"search.default_limit",
		"server.addr",
		"server.rate",
		"server.burst",
		"scraper.delay",
		"scraper.timeout",
		"scraper.user_agent",
		"scraper.parallelism",
		"storage.endpoint",
		"storage.bucket",
		"storage.access_key_id",
		"storage.secret_access_key",
		"storage.use_ssl",
		"elasticsearch.addresses",
		"elasticsearch.index",
		"elasticsearch.username",
		"elasticsearch.password",
		"mcp.name",
		"mcp.version",
	} {
		viper.BindEnv(key, envKey(key))
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special case: addresses as comma-separated string from env
	if addrs := os.Getenv(envKey("elasticsearch.addresses")); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}

	if corpusPath != "" {
		cfg.Corpus.Path = corpusPath
	}
}

// envKey maps a config key to its environment variable name.
func envKey(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
