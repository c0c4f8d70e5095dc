package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

var rootCmd = &cobra.Command{
	Use:   "lanshare",
	Short: "LanShare - LAN peer discovery and messaging",
	Long: `LanShare discovers peers on the local network segment via UDP broadcast
and exchanges short text messages with them, addressed to one peer or to all.

Use "lanshare [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Environment overrides may live in a .env file next to the binary
		if err := godotenv.Load(); err == nil {
			logrus.Debug("loaded environment from .env")
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ~/.lanshare/config.json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
}

// versionCmd shows version info
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("LanShare\n")
		fmt.Printf("  Version: %s\n", Version)
		fmt.Printf("  Commit:  %s\n", Commit)
	},
}
