// Backup subsystem commands: backup, restore, backups, verify.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a point-in-time snapshot of the database file",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, manager, err := openBackupManager()
		if err != nil {
			fail(exitSysError, "backup", err)
		}
		defer store.Close()

		path, err := manager.Backup()
		if err != nil {
			fail(exitSysError, "backup", err)
		}

		fmt.Println(path)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-path>",
	Short: "Restore the database from a backup snapshot",
	Long: `Overwrite the live database file with the named backup. The current
file is first copied to a pre-restore snapshot in the backup directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, manager, err := openBackupManager()
		if err != nil {
			fail(exitSysError, "restore", err)
		}
		defer store.Close()

		if err := manager.Restore(args[0], nil); err != nil {
			fail(exitSysError, "restore", err)
		}

		fmt.Printf("Restored from %s\n", args[0])
		return nil
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List available backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, manager, err := openBackupManager()
		if err != nil {
			fail(exitSysError, "backups", err)
		}
		defer store.Close()

		list, err := manager.ListBackups()
		if err != nil {
			fail(exitSysError, "backups", err)
		}

		return printResult(list, func() {
			for _, path := range list {
				fmt.Println(path)
			}
			if len(list) == 0 {
				fmt.Println("no backups")
			}
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <backup-path>",
	Short: "Check the integrity of a backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, manager, err := openBackupManager()
		if err != nil {
			fail(exitSysError, "verify", err)
		}
		defer store.Close()

		if !manager.VerifyBackup(args[0]) {
			fmt.Fprintf(os.Stderr, "%s: invalid\n", args[0])
			os.Exit(exitUserError)
		}

		fmt.Printf("%s: ok\n", args[0])
		return nil
	},
}
