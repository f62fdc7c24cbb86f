package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheArchitect4855/ksearch/internal/catalog"
	"github.com/TheArchitect4855/ksearch/internal/logging"
	"github.com/TheArchitect4855/ksearch/internal/postings"
	"github.com/TheArchitect4855/ksearch/internal/query"
	"github.com/TheArchitect4855/ksearch/internal/stopwords"
)

var queryCmd = &cobra.Command{
	Use:   "query <query-string>",
	Short: "Rank pages matching the given query terms",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
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

	cat, err := catalog.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open catalog", "path", cfg.DatabasePath, "err", err)
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	queryLogger := logging.ForQuery(logger)
	store := postings.New(cfg.IndicesDir)
	planner := query.New(store, cat, queryLogger)

	terms := queryTerms(args[0])
	results, err := planner.Query(terms)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	limit := cfg.QueryLimit
	if limit > len(results) {
		limit = len(results)
	}
	for _, r := range results[:limit] {
		fmt.Printf("%s (rank %d, %d hits)\n", r.URL, r.Backlinks, r.Hits)
	}

	return nil
}

// queryTerms lowercases and whitespace-splits the raw query string,
// dropping stopwords the same way the analyzer does for document tags.
func queryTerms(raw string) []string {
	fields := strings.Fields(strings.ToLower(raw))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopwords.IsStopword(f) {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
