// Init command: create the data directory and an empty schema.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the walkthrough store",
	Long:  `Create the data directory, the database file, and the schema if missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, config, err := openStore()
		if err != nil {
			fail(exitSysError, "init", err)
		}
		defer store.Close()

		fmt.Printf("Initialized walkthrough store at %s\n", config.DBPath)
		return nil
	},
}
