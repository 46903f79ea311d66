package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"newsradar/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "newsradar",
	Short: "Multi-source news aggregation with semantic ranking",
	Long: `newsradar aggregates news from SerpAPI, Naver, and RSS feeds,
deduplicates the results, and optionally ranks them by semantic
similarity to the query using embeddings.

Example usage:
  newsradar search -q "반도체 수출"       # Keyword search across providers
  newsradar semantic -q "ai regulation"  # Semantically ranked search
  newsradar serve                        # Run the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, wderr := os.Getwd()
			if wderr != nil {
				return fmt.Errorf("failed to get working directory: %w", wderr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		setupLogging(cfg.Logging)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./newsradar.yaml)")
}

func setupLogging(lc config.LoggingConfig) {
	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if lc.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func GetConfig() *config.Config {
	return cfg
}
