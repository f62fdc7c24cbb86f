// Package config provides configuration management for ksearch.
// It defines the configuration structure and default values shared by
// the index and query commands.
package config

import "time"

// Config holds configuration shared across ksearch's subcommands.
type Config struct {
	// DatabasePath is the path to the SQLite catalog database.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// IndicesDir is the root directory under which posting-list files
	// live.
	IndicesDir string `mapstructure:"indices_dir" yaml:"indices_dir"`

	// StopwordsPath is the path to the newline-delimited stopword file.
	StopwordsPath string `mapstructure:"stopwords_path" yaml:"stopwords_path"`

	// UserAgent is the HTTP User-Agent header sent by the fetcher.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	// RequestTimeout is the per-request HTTP timeout.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	// CrawlDelay is the minimum interval between fetches, enforced by
	// the crawl driver's rate limiter.
	CrawlDelay time.Duration `mapstructure:"crawl_delay" yaml:"crawl_delay"`

	// Debug enables debug-mode behavior: on index, truncates the pages
	// table and deletes the indices tree before crawling (§6), and
	// turns on the posting store's post-condition checks.
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// QueryLimit caps the number of results query prints.
	QueryLimit int `mapstructure:"query_limit" yaml:"query_limit"`

	// Logging configuration, matching the teacher's logging.Config
	// shape.
	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`
	LogFile       string `mapstructure:"log_file" yaml:"log_file"`
	LogMaxSize    int    `mapstructure:"log_max_size" yaml:"log_max_size"`
	LogMaxBackups int    `mapstructure:"log_max_backups" yaml:"log_max_backups"`
	LogConsole    bool   `mapstructure:"log_console" yaml:"log_console"`
}

// DefaultConfig returns a Config with ksearch's default values.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:   "./index.db",
		IndicesDir:     "./indices",
		StopwordsPath:  "stop-words.txt",
		UserAgent:      "ksearch-bot",
		RequestTimeout: 30 * time.Second,
		CrawlDelay:     time.Second,
		Debug:          false,
		QueryLimit:     10,
		LogLevel:       "info",
		LogFile:        "",
		LogMaxSize:     100,
		LogMaxBackups:  5,
		LogConsole:     true,
	}
}

// Validate checks that the configuration can be used to run a command.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return ErrEmptyDatabasePath
	}
	if c.IndicesDir == "" {
		return ErrEmptyIndicesDir
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.QueryLimit <= 0 {
		return ErrInvalidQueryLimit
	}
	return nil
}
