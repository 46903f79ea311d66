package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsradar/internal/domain"
)

var (
	searchQuery string
	searchNum   int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Keyword search across all configured providers",
	Long: `Aggregate news for a query from every configured provider,
deduplicated and sorted newest first.

Examples:
  newsradar search -q "반도체 수출"
  newsradar search -q "ai regulation" -n 20`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchNum, "num", "n", 10, "maximum number of results")
	searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	search, cleanup, err := buildSearch(GetConfig())
	if err != nil {
		return err
	}
	defer cleanup()

	articles, err := search.SearchKeyword(cmd.Context(), searchQuery, searchNum)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(articles) == 0 {
		fmt.Println("No results.")
		return nil
	}

	fmt.Printf("Found %d articles:\n\n", len(articles))
	for i, a := range articles {
		printArticle(i+1, a)
	}
	return nil
}

func printArticle(n int, a domain.Article) {
	fmt.Printf("%2d. %s\n", n, a.Title)
	fmt.Printf("    %s", a.Source)
	if a.PublishedAt != nil {
		fmt.Printf("  %s", a.PublishedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n    %s\n", a.URL)
	if a.Snippet != "" {
		fmt.Printf("    %s\n", a.Snippet)
	}
	fmt.Println()
}
