package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/TheArchitect4855/ksearch/internal/catalog"
	"github.com/TheArchitect4855/ksearch/internal/crawldriver"
	"github.com/TheArchitect4855/ksearch/internal/fetch"
	"github.com/TheArchitect4855/ksearch/internal/indexer"
	"github.com/TheArchitect4855/ksearch/internal/logging"
	"github.com/TheArchitect4855/ksearch/internal/postings"
	"github.com/TheArchitect4855/ksearch/internal/stopwords"
)

var indexCmd = &cobra.Command{
	Use:   "index <seed-url>",
	Short: "Crawl from a seed URL and build the catalog and posting lists",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().Duration("delay", 0, "minimum delay between fetches (0 = use config default)")
	indexCmd.Flags().Duration("timeout", 0, "HTTP request timeout (0 = use config default)")
	indexCmd.Flags().String("user-agent", "", "HTTP User-Agent header (empty = use config default)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	seedURL := args[0]

	logger, err := logging.NewLogger(logging.Config{
		Level:      logging.ParseLevel(cfg.LogLevel),
		FilePath:   cfg.LogFile,
		MaxSize:    int64(cfg.LogMaxSize),
		MaxBackups: cfg.LogMaxBackups,
		Console:    cfg.LogConsole,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := stopwords.Load(cfg.StopwordsPath); err != nil {
		logger.Error("failed to load stopwords", "path", cfg.StopwordsPath, "err", err)
		return fmt.Errorf("failed to load stopwords: %w", err)
	}

	if cfg.Debug {
		logger.Warn("debug mode: resetting catalog and indices before crawl")
		if err := os.RemoveAll(cfg.IndicesDir); err != nil {
			return fmt.Errorf("failed to clear indices directory: %w", err)
		}
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	cat, err := catalog.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open catalog", "path", cfg.DatabasePath, "err", err)
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	if cfg.Debug {
		if err := cat.ResetAll(); err != nil {
			return fmt.Errorf("failed to reset catalog: %w", err)
		}
	}

	store := postings.New(cfg.IndicesDir)
	store.Debug = cfg.Debug

	runID := uuid.New().String()
	if err := cat.SetMeta("last_crawl_id", runID); err != nil {
		logger.Warn("failed to record crawl run id", "err", err)
	}
	crawlLogger := logging.ForCrawl(logger, runID)

	ix := indexer.New(cat, store, crawlLogger)

	userAgent := cfg.UserAgent
	if v, _ := cmd.Flags().GetString("user-agent"); v != "" {
		userAgent = v
	}
	timeout := cfg.RequestTimeout
	if v, _ := cmd.Flags().GetDuration("timeout"); v != 0 {
		timeout = v
	}
	client := fetch.New(userAgent, timeout)
	defer client.Close()

	delay := cfg.CrawlDelay
	if v, _ := cmd.Flags().GetDuration("delay"); v != 0 {
		delay = v
	}
	var limiter *rate.Limiter
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	driver := crawldriver.New(client, ix, cat, limiter, crawlLogger)

	crawlLogger.Info("starting crawl", "seed", seedURL)
	if err := driver.Crawl(cmd.Context(), seedURL); err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	crawlLogger.Info("crawl complete")

	return nil
}
