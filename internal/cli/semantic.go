package cli

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"newsradar/internal/usecase"
)

var (
	semanticQuery     string
	semanticNum       int
	semanticMinSim    float64
	semanticChunkSize int
	semanticEarlyStop int
	semanticStrategy  string
)

var semanticCmd = &cobra.Command{
	Use:   "semantic",
	Short: "Semantically ranked search",
	Long: `Aggregate news for a query and rank the results by embedding
similarity. Requires the embedding API key to be configured.

Examples:
  newsradar semantic -q "ai regulation"
  newsradar semantic -q "금리 인상" -n 20 --min-similarity 0.3
  newsradar semantic -q "elections" --strategy chunked`,
	RunE: runSemantic,
}

func init() {
	semanticCmd.Flags().StringVarP(&semanticQuery, "query", "q", "", "search query (required)")
	semanticCmd.Flags().IntVarP(&semanticNum, "num", "n", 10, "maximum number of results")
	semanticCmd.Flags().Float64Var(&semanticMinSim, "min-similarity", 0, "minimum similarity score (0 disables filtering)")
	semanticCmd.Flags().IntVar(&semanticChunkSize, "chunk-size", 0, "candidates encoded per chunk (0 uses config)")
	semanticCmd.Flags().IntVar(&semanticEarlyStop, "early-stop", 0, "stop after this many qualifying results (0 uses default)")
	semanticCmd.Flags().StringVar(&semanticStrategy, "strategy", "", "ranking strategy: indexed or chunked (default from config)")
	semanticCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(semanticCmd)
}

func runSemantic(cmd *cobra.Command, args []string) error {
	search, cleanup, err := buildSearch(GetConfig())
	if err != nil {
		return err
	}
	defer cleanup()

	// The bar is created on the first progress callback, once the
	// candidate total is known.
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	progress := func(processed, total int) {
		barMu.Lock()
		defer barMu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Ranking[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(processed)
	}

	req := usecase.SemanticRequest{
		Query:     semanticQuery,
		Num:       semanticNum,
		ChunkSize: semanticChunkSize,
		EarlyStop: semanticEarlyStop,
		Strategy:  semanticStrategy,
		Progress:  progress,
	}
	if cmd.Flags().Changed("min-similarity") {
		req.MinSimilarity = &semanticMinSim
	}

	scored, err := search.SearchSemantic(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("semantic search failed: %w", err)
	}

	if len(scored) == 0 {
		fmt.Println("No results.")
		return nil
	}

	fmt.Printf("Found %d articles:\n\n", len(scored))
	for i, s := range scored {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, s.Score, s.Article.Title)
		fmt.Printf("    %s  %s\n", s.Article.Source, s.Article.URL)
		if s.Article.Snippet != "" {
			fmt.Printf("    %s\n", s.Article.Snippet)
		}
		fmt.Println()
	}
	return nil
}
