// Updtrr is a fleet firmware updater for AxeOS (Bitaxe) mining devices.
//
// It uploads a firmware/web-interface bundle to every device in a list,
// strictly one device at a time, skipping devices that already run the
// bundled version. Devices can come from a list file, explicit flags, mDNS
// discovery, or a subnet sweep.
//
// Usage:
//
//	updtrr update esp-miner.bin www.bin --devices devices.txt
//
// See 'updtrr --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/updtrr/updtrr/internal/logging"
	"github.com/updtrr/updtrr/internal/version"
)

// exitCode carries the run classification out of the command handlers:
// 0 all succeeded, 1 some failed, 2 all failed, 130 interrupted.
var exitCode int

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logging.Sync()
		os.Exit(2)
	}

	logging.Sync()
	os.Exit(exitCode)
}

var rootCmd = &cobra.Command{
	Use:   "updtrr",
	Short: "AxeOS fleet firmware updater",
	Long: `Updtrr flashes firmware and web interface images to a fleet of
AxeOS (Bitaxe) devices over their HTTP OTA API.

Devices are updated strictly one at a time, in list order. Each device is
version-checked first and skipped when already up to date; a failing device
never stops the rest of the fleet.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("updtrr %s\n", version.Full())
	},
}
