// internal/cli/scrape.go
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/ui"
	"github.com/law-makers/reviews/internal/utils/output"
	urlutil "github.com/law-makers/reviews/internal/utils/url"
)

var (
	scrapeOutput string
	scrapeFormat string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape reviews from a URL",
	Long: `Dispatches the URL to the provider whose patterns match it, scrapes
the reviews, and prints them sorted newest first.`,
	Example: `  # Scrape reviews and print them as JSON
  reviews scrape https://example.com/reviews/widget

  # Save the reviews to a CSV file
  reviews scrape https://example.com/reviews/widget --format=csv --output=reviews.csv

  # Render the reviews as Markdown
  reviews scrape https://example.com/reviews/widget --format=markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "File path to save the reviews")
	scrapeCmd.Flags().StringVarP(&scrapeFormat, "format", "f", "json", "Output format: json, csv, or markdown")
}

func runScrape(cmd *cobra.Command, args []string) error {
	url := args[0]
	appCtx := GetAppFromCmd(cmd)
	if appCtx == nil {
		return fmt.Errorf("application not initialized")
	}

	if err := urlutil.ValidateURL(url); err != nil {
		return exitWith(2, err.Error())
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), appCtx.Config.HTTPTimeout)
	defer cancel()

	result, err := appCtx.Service.ParseReviews(ctx, url)
	if err != nil {
		if provider.IsKind(err, provider.KindNoMatchedProvider) {
			return exitWith(2, err.Error())
		}
		return exitWith(1, fmt.Sprintf("scraping %s: %v", url, err))
	}

	log.Debug().
		Str("provider", result.Provider).
		Int("reviews", len(result.Reviews)).
		Msg("Reviews scraped")

	dest := os.Stdout
	if scrapeOutput != "" {
		file, err := os.Create(scrapeOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		dest = file
	}

	if err := output.Write(dest, scrapeFormat, result, url); err != nil {
		return exitWith(2, err.Error())
	}

	summary := ui.Success(fmt.Sprintf("%d review(s) from %s", len(result.Reviews), result.Provider))
	if scrapeOutput != "" {
		summary = ui.Success(fmt.Sprintf("Saved %d review(s) from %s to %s",
			len(result.Reviews), result.Provider, scrapeOutput))
	}
	fmt.Fprintf(os.Stderr, "%s\n", summary)
	return nil
}
