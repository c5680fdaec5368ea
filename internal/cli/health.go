// internal/cli/health.go
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/ui"
)

var healthAll bool

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health [provider]",
	Short: "Check provider health against their test URLs",
	Long: `Runs each selected provider against its declared test URLs and reports
whether it still scrapes valid reviews. A provider with no test URLs is
reported as unhealthy.`,
	Example: `  # Check a single provider
  reviews health dummy

  # Check every registered provider
  reviews health --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().BoolVarP(&healthAll, "all", "a", false, "Check every registered provider")
}

func runHealth(cmd *cobra.Command, args []string) error {
	appCtx := GetAppFromCmd(cmd)
	if appCtx == nil {
		return fmt.Errorf("application not initialized")
	}
	if !healthAll && len(args) == 0 {
		return exitWith(2, "name a provider or pass --all")
	}

	factories, err := selectFactories(appCtx.Service.ListProviders(), args, healthAll)
	if err != nil {
		return exitWith(2, err.Error())
	}

	unhealthy := 0
	for _, factory := range factories {
		p, err := factory.New(appCtx.HTTPClient)
		if err != nil {
			fmt.Printf("%s %s: %v\n", ui.Error("✗"), factory.Descriptor.Name, err)
			unhealthy++
			continue
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), appCtx.Config.HTTPTimeout)
		results := provider.CheckHealth(ctx, p, "")
		cancel()

		fmt.Printf("\n%s\n", ui.Bold(factory.Descriptor.Name))
		for _, result := range results {
			mark := ui.Success("✓")
			if !result.IsHealthy {
				mark = ui.Error("✗")
				unhealthy++
			}
			fmt.Printf("  %s %s", mark, result.Message)
			if result.URL != "" {
				fmt.Printf("  %s", ui.ColorDim+result.URL+ui.ColorReset)
			}
			if result.ReviewsCount > 0 {
				fmt.Printf(" (%d reviews)", result.ReviewsCount)
			}
			fmt.Println()
		}
	}
	fmt.Println()

	if unhealthy > 0 {
		return exitWith(1, fmt.Sprintf("%d unhealthy check(s)", unhealthy))
	}
	return nil
}

// selectFactories resolves the providers a command should operate on,
// either every registered one or the single named one.
func selectFactories(all []provider.Factory, args []string, wantAll bool) ([]provider.Factory, error) {
	if wantAll {
		return all, nil
	}
	name := args[0]
	for _, factory := range all {
		if factory.Descriptor.Name == name {
			return []provider.Factory{factory}, nil
		}
	}
	return nil, fmt.Errorf("unknown provider: %s", name)
}
