// Shared helpers for walkabout integration tests.
package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tourforge/walkabout/internal/sqlite"
	"github.com/tourforge/walkabout/pkg/types"
)

// newOpenStore opens a store against a fresh temp directory and returns
// it with its config. The store is closed on test cleanup.
func newOpenStore(t *testing.T) (*sqlite.Store, types.Config) {
	t.Helper()
	tmpDir := t.TempDir()

	config := types.Config{
		DBPath:    filepath.Join(tmpDir, "walkabout.db"),
		BackupDir: filepath.Join(tmpDir, "backups"),
	}

	store := sqlite.NewStore()
	require.NoError(t, store.Open(config), "opening store")
	t.Cleanup(func() { store.Close() })

	return store, config
}

// newBackupManager creates a backup manager over the store's files.
func newBackupManager(t *testing.T, store *sqlite.Store, config types.Config) *sqlite.BackupManager {
	t.Helper()
	manager, err := sqlite.NewBackupManager(store, config.DBPath, config.BackupDir)
	require.NoError(t, err, "creating backup manager")
	return manager
}

// onboardingTour is a two-step walkthrough input used across scenarios.
func onboardingTour() types.WalkthroughInput {
	return types.WalkthroughInput{
		Name:        "Onboarding",
		Description: "First-run product tour",
		IsActive:    true,
		Steps: []types.Step{
			{ID: "s1", Title: "Welcome", Content: "Start here", Target: "#app", Order: 1, Position: types.PositionBottom},
			{ID: "s2", Title: "Menu", Content: "Open the menu", Target: ".nav", Order: 2, Position: types.PositionRight},
		},
	}
}
