// Delete command: remove a walkthrough and its dependent rows.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tourforge/walkabout/internal/sqlite"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <walkthrough-id>",
	Short: "Delete a walkthrough (cascades to progress and analytics)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			fail(exitSysError, "delete", err)
		}
		defer store.Close()

		removed, err := sqlite.NewWalkthroughRepo(store).Delete(args[0])
		if err != nil {
			fail(exitSysError, "delete", err)
		}
		if !removed {
			fmt.Fprintf(os.Stderr, "walkthrough %s not found\n", args[0])
			os.Exit(exitUserError)
		}

		fmt.Printf("Deleted walkthrough %s\n", args[0])
		return nil
	},
}

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate all tables (destructive)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetForce {
			fmt.Fprintln(os.Stderr, "reset: pass --force to drop all data")
			os.Exit(exitUserError)
		}

		store, _, err := openStore()
		if err != nil {
			fail(exitSysError, "reset", err)
		}
		defer store.Close()

		if err := store.Reset(); err != nil {
			fail(exitSysError, "reset", err)
		}

		fmt.Println("Store reset: all tables recreated empty")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "confirm the destructive reset")
}
