// internal/cli/root.go
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/reviews/internal/app"
	"github.com/law-makers/reviews/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Scrape product reviews through pluggable providers",
	Long: `Reviews dispatches URLs to the provider whose patterns match them,
normalizes what the provider scrapes into a single review shape, and can
record provider runs as replayable fixtures for offline testing.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a specific process exit code out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// exitWith builds an error that makes the process exit with code.
func exitWith(code int, msg string) error {
	return &exitError{code: code, msg: msg}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.msg != "" {
			log.Error().Msg(exit.msg)
		}
		os.Exit(exit.code)
	}
	log.Error().Msg(err.Error())
	os.Exit(1)
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout*10)
		defer cancel()
		appCtx, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}

		SetApp(cmd, appCtx)
		SetApp(rootCmd, appCtx)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		appCtx := GetAppFromCmd(cmd)
		if appCtx == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), appCtx.Config.HTTPTimeout*10)
		defer cancel()
		_ = appCtx.Close(ctx)
		SetApp(cmd, nil)
		SetApp(rootCmd, nil)
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().BoolP("help", "h", false, "Help for Reviews")
	rootCmd.Flags().Bool("version", false, "Version for Reviews")
}
