// internal/cli/list.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/reviews/internal/ui"
)

var listDetails bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available review providers",
	Long: `Lists every provider the registry knows about, builtin and plugin,
sorted by name. Use --details to also print each provider's URL patterns
and test URLs.`,
	Example: `  # List provider names and descriptions
  reviews list

  # Include URL patterns and test URLs
  reviews list --details`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVarP(&listDetails, "details", "d", false, "Show URL patterns and test URLs")
}

func runList(cmd *cobra.Command, args []string) error {
	appCtx := GetAppFromCmd(cmd)
	if appCtx == nil {
		return fmt.Errorf("application not initialized")
	}

	factories := appCtx.Service.ListProviders()
	if len(factories) == 0 {
		fmt.Println(ui.Info("No providers registered."))
		return nil
	}

	fmt.Printf("\n%s\n", ui.Bold(fmt.Sprintf("%d provider(s) available:", len(factories))))
	for _, factory := range factories {
		desc := factory.Descriptor
		fmt.Printf("\n  %s", ui.ColorCyan+desc.Name+ui.ColorReset)
		if desc.Description != "" {
			fmt.Printf("  %s", ui.ColorDim+desc.Description+ui.ColorReset)
		}
		fmt.Println()

		if !listDetails {
			continue
		}
		if len(desc.URLPatterns) > 0 {
			fmt.Printf("    patterns:  %s\n", strings.Join(desc.URLPatterns, ", "))
		}
		if len(desc.TestURLs) > 0 {
			fmt.Printf("    test urls: %s\n", strings.Join(desc.TestURLs, ", "))
		}
		if desc.Notes != "" {
			fmt.Printf("    notes:     %s\n", strings.TrimSpace(desc.Notes))
		}
	}
	fmt.Println()
	return nil
}
