package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X vocal-assistant/cmd/vocal/cmd/version.version=..."
var version = "v0.1.0"

// Cmd represents the version command
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of vocal",
	// no configuration needed
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	},
}
