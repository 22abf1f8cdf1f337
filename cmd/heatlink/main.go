// Heatlink bridges a heating-system gateway to MQTT.
//
// It connects to the gateway over mutually-authenticated TLS, speaks the
// gateway's framed XML protocol (login, system config, per-device pull,
// per-device push subscription), and forwards every decoded sensor
// reading to an MQTT broker.
//
// Usage:
//
//	heatlink [command] [flags]
//
// Running without arguments starts the bridge.
// See 'heatlink --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/heatlink/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "heatlink",
	Short: "Heating-gateway to MQTT bridge",
	Long: `Heatlink connects to a heating-system gateway over TLS, pulls the
initial sensor values for every device on the gateway's bus, subscribes
to periodic push updates, and forwards all readings to MQTT.

If no command is specified, the bridge starts (same as 'heatlink run').`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the bridge when no subcommand provided
		return runBridge(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("heatlink %s (commit: %s)\n", version.Version, version.Commit)
	},
}
