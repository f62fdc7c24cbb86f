// Package cmd provides the command-line interface for ksearch.
// It wires cobra/viper configuration to the index and query
// subcommands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TheArchitect4855/ksearch/internal/config"
)

var (
	cfgFile   string
	cfg       *config.Config
	version   string
	buildTime string
)

// rootCmd is the base command when ksearch is called without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "ksearch",
	Short: "A small web crawler, indexer, and search engine",
	Long: `ksearch crawls the web from a seed URL, extracts terms and
links using a tolerant regex-based analyzer, stores them in a SQLite
catalog and a set of per-term posting-list files, and answers queries
by ranking pages on term hits and backlink count.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information shown by --version.
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("database", "./index.db", "path to the SQLite catalog database")
	rootCmd.PersistentFlags().String("indices", "./indices", "path to the posting-list index directory")
	rootCmd.PersistentFlags().String("stopwords", "stop-words.txt", "path to the stopword file")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug mode (index resets existing data)")

	_ = viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("database"))
	_ = viper.BindPFlag("indices_dir", rootCmd.PersistentFlags().Lookup("indices"))
	_ = viper.BindPFlag("stopwords_path", rootCmd.PersistentFlags().Lookup("stopwords"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
}

// initConfig reads a config file and environment variables, then
// unmarshals into cfg. Failures are non-fatal: ksearch can run on
// flags and defaults alone.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("KSEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	cfg = config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to unmarshal config: %v\n", err)
	}
}
