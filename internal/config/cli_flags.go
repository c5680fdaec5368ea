package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().String("timeout", "30s", "Set hard timeout for requests")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("plugins-dir", "", "Directory scanned for provider plugins")
	cmd.PersistentFlags().String("mocks-dir", "", "Directory holding recorded provider fixtures")
	cmd.PersistentFlags().String("cache-dir", "", "Directory holding raw cached responses")
	cmd.PersistentFlags().String("mock-format", "", "Fixture format: yaml or json")
}
