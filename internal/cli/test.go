// internal/cli/test.go
package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/recorder"
	"github.com/law-makers/reviews/internal/ui"
)

var (
	testAll      bool
	testReRecord bool
	testRecord   bool
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test [provider]",
	Short: "Test providers against recorded fixtures",
	Long: `Replays each selected provider against its recorded fixtures, recording
any missing fixture live first. With --record the providers run live
against every declared URL and the fixtures are written fresh;
--re-record additionally clears previously recorded fixtures.`,
	Example: `  # Replay one provider's fixtures
  reviews test dummy

  # Test every provider, recording missing fixtures
  reviews test --all

  # Record fixtures from scratch
  reviews test dummy --re-record`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().BoolVarP(&testAll, "all", "a", false, "Test every registered provider")
	testCmd.Flags().BoolVar(&testRecord, "record", false, "Record fixtures live instead of replaying")
	testCmd.Flags().BoolVar(&testReRecord, "re-record", false, "Clear fixtures and record them fresh")
}

func runTest(cmd *cobra.Command, args []string) error {
	appCtx := GetAppFromCmd(cmd)
	if appCtx == nil {
		return fmt.Errorf("application not initialized")
	}
	if !testAll && len(args) == 0 {
		return exitWith(2, "name a provider or pass --all")
	}

	factories, err := selectFactories(appCtx.Service.ListProviders(), args, testAll)
	if err != nil {
		return exitWith(2, err.Error())
	}

	bar := progressbar.NewOptions(len(factories),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("testing providers"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	failures := 0
	var reports []string
	for _, factory := range factories {
		reports = append(reports, testOne(cmd, appCtx.Recorder, factory, &failures))
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	for _, report := range reports {
		fmt.Print(report)
	}

	if failures > 0 {
		return exitWith(1, fmt.Sprintf("%d failed check(s)", failures))
	}
	fmt.Println(ui.Success("All provider checks passed."))
	return nil
}

func testOne(cmd *cobra.Command, rec *recorder.Recorder, factory provider.Factory, failures *int) string {
	name := factory.Descriptor.Name
	var results []recorder.RecordingResult
	if testRecord || testReRecord {
		successful, failed := rec.RecordProvider(cmd.Context(), factory, testReRecord)
		results = append(successful, failed...)
	} else {
		results = rec.TestProvider(cmd.Context(), factory, false)
	}

	report := fmt.Sprintf("\n%s\n", ui.Bold(name))
	if len(results) == 0 {
		report += fmt.Sprintf("  %s no test URLs configured\n", ui.Error("✗"))
		*failures++
		return report
	}
	for _, result := range results {
		if result.Success {
			report += fmt.Sprintf("  %s %s", ui.Success("✓"), result.TestCase)
			if result.ReviewsCount > 0 {
				report += fmt.Sprintf(" (%d reviews)", result.ReviewsCount)
			}
			report += "\n"
			continue
		}
		report += fmt.Sprintf("  %s %s: %s\n", ui.Error("✗"), result.TestCase, result.ErrorMessage)
		*failures++
	}
	return report
}
