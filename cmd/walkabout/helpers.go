// Shared helpers for walkabout CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tourforge/walkabout/internal/paths"
	"github.com/tourforge/walkabout/internal/sqlite"
	"github.com/tourforge/walkabout/pkg/types"
)

// resolveStoreConfig resolves the data directory through the
// flag > config.yaml > env > default precedence chain and returns the
// store configuration derived from it.
func resolveStoreConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, err
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	return types.Config{
		DBPath:    paths.DatabasePath(dataDir),
		BackupDir: paths.BackupDir(dataDir),
	}, nil
}

// openStore resolves configuration and opens the store. The caller must
// defer store.Close().
func openStore() (*sqlite.Store, types.Config, error) {
	config, err := resolveStoreConfig()
	if err != nil {
		return nil, types.Config{}, err
	}

	store := sqlite.NewStore()
	if err := store.Open(config); err != nil {
		return nil, types.Config{}, fmt.Errorf("open store: %w", err)
	}
	return store, config, nil
}

// openBackupManager opens the store and a backup manager over it.
func openBackupManager() (*sqlite.Store, *sqlite.BackupManager, error) {
	store, config, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	manager, err := sqlite.NewBackupManager(store, config.DBPath, config.BackupDir)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("create backup manager: %w", err)
	}
	return store, manager, nil
}

// printResult writes v as indented JSON when --json is set, otherwise
// using the given plain-text formatter.
func printResult(v any, plain func()) error {
	if !flags.jsonMode {
		plain()
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// fail prints the error to stderr and exits with the given code.
func fail(code int, context string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", context, err)
	os.Exit(code)
}
