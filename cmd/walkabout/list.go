// List command: enumerate walkthroughs.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tourforge/walkabout/internal/sqlite"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all walkthroughs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			fail(exitSysError, "list", err)
		}
		defer store.Close()

		walkthroughs, err := sqlite.NewWalkthroughRepo(store).FindAll()
		if err != nil {
			fail(exitSysError, "list", err)
		}

		return printResult(walkthroughs, func() {
			for _, w := range walkthroughs {
				state := "inactive"
				if w.IsActive {
					state = "active"
				}
				fmt.Printf("%s  %-24s  %d steps  %s\n", w.ID, w.Name, len(w.Steps), state)
			}
			if len(walkthroughs) == 0 {
				fmt.Println("no walkthroughs")
			}
		})
	},
}
