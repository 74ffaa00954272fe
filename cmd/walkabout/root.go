// Root command for the walkabout CLI.
package main

import (
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

var flags rootFlags

var rootCmd = &cobra.Command{
	Use:   "walkabout",
	Short: "An embedded store for product walkthroughs",
	Long: `Walkabout manages product walkthroughs (guided UI tours), per-user
progress, and usage analytics in an embedded SQLite database, with
physical backup and restore of the database file.`,
	// Subcommand errors are reported by main; don't repeat usage.
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .walkabout-db)")
	rootCmd.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(verifyCmd)
}
