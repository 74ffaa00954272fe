// Show command: display one walkthrough with its progress and events.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tourforge/walkabout/internal/sqlite"
)

var showCmd = &cobra.Command{
	Use:   "show <walkthrough-id>",
	Short: "Show a walkthrough, its steps, and usage counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			fail(exitSysError, "show", err)
		}
		defer store.Close()

		w, err := sqlite.NewWalkthroughRepo(store).FindByID(args[0])
		if err != nil {
			fail(exitSysError, "show", err)
		}
		if w == nil {
			fmt.Fprintf(os.Stderr, "walkthrough %s not found\n", args[0])
			os.Exit(exitUserError)
		}

		progress, err := sqlite.NewProgressRepo(store).FindAllByWalkthrough(w.ID)
		if err != nil {
			fail(exitSysError, "show", err)
		}
		events, err := sqlite.NewAnalyticsRepo(store).FindByWalkthrough(w.ID)
		if err != nil {
			fail(exitSysError, "show", err)
		}

		return printResult(w, func() {
			fmt.Printf("%s  %s\n", w.ID, w.Name)
			if w.Description != "" {
				fmt.Println(w.Description)
			}
			for _, step := range w.Steps {
				fmt.Printf("  %2d. %s (%s)\n", step.Order, step.Title, step.Target)
			}
			fmt.Printf("%d progress rows, %d events\n", len(progress), len(events))
		})
	},
}
