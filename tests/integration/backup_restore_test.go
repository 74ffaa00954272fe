// Integration tests for the backup and restore subsystem end to end.
package integration

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourforge/walkabout/internal/sqlite"
	"github.com/tourforge/walkabout/pkg/types"
)

func TestBackupRestore_Roundtrip(t *testing.T) {
	store, config := newOpenStore(t)
	manager := newBackupManager(t, store, config)
	walkthroughs := sqlite.NewWalkthroughRepo(store)

	created, err := walkthroughs.Create(onboardingTour())
	require.NoError(t, err)

	backupPath, err := manager.Backup()
	require.NoError(t, err)
	assert.True(t, manager.VerifyBackup(backupPath))

	removed, err := walkthroughs.Delete(created.ID)
	require.NoError(t, err)
	require.True(t, removed)

	all, err := walkthroughs.FindAll()
	require.NoError(t, err)
	require.Empty(t, all)

	var reopened *sql.DB
	require.NoError(t, manager.Restore(backupPath, func(db *sql.DB) { reopened = db }))
	require.NotNil(t, reopened, "restore must hand back the new handle")

	all, err = walkthroughs.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0].ID)
	assert.Len(t, all[0].Steps, 2, "restored walkthrough keeps its original steps")
	assert.Equal(t, "Welcome", all[0].Steps[0].Title)
}

func TestBackupRestore_RestoreMissingLeavesFileUntouched(t *testing.T) {
	store, config := newOpenStore(t)
	manager := newBackupManager(t, store, config)

	_, err := sqlite.NewWalkthroughRepo(store).Create(onboardingTour())
	require.NoError(t, err)

	before, err := os.ReadFile(config.DBPath)
	require.NoError(t, err)

	err = manager.Restore(filepath.Join(config.BackupDir, "does-not-exist.db"), nil)
	require.ErrorIs(t, err, types.ErrBackupNotFound)

	after, err := os.ReadFile(config.DBPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "live database file must be byte-for-byte unchanged")
}

func TestBackupRestore_VerifyMissingReturnsFalse(t *testing.T) {
	store, config := newOpenStore(t)
	manager := newBackupManager(t, store, config)

	assert.False(t, manager.VerifyBackup("does-not-exist"))
}

func TestBackupRestore_BackupWaitsForOpenWriteTransaction(t *testing.T) {
	store, config := newOpenStore(t)
	manager := newBackupManager(t, store, config)
	walkthroughs := sqlite.NewWalkthroughRepo(store)

	_, err := walkthroughs.Create(onboardingTour())
	require.NoError(t, err)

	db, err := store.Handle()
	require.NoError(t, err)

	// Hold a write transaction open, then commit after a delay.
	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec(
		`INSERT INTO walkthroughs (id, name, description, steps_json, is_active, created_at, updated_at)
         VALUES ('held', 'Held', '', '[]', 1, '2026-01-01T00:00:00.000Z', '2026-01-01T00:00:00.000Z')`,
	)
	require.NoError(t, err)

	committed := make(chan struct{})
	go func() {
		time.Sleep(200 * time.Millisecond)
		tx.Commit()
		close(committed)
	}()

	// Backup blocks until the writer commits, then succeeds; the
	// committed row is part of the snapshot.
	start := time.Now()
	backupPath, err := manager.Backup()
	require.NoError(t, err)
	<-committed
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond, "backup should have waited for the writer")

	require.NoError(t, manager.Restore(backupPath, nil))
	restored, err := walkthroughs.FindByID("held")
	require.NoError(t, err)
	assert.NotNil(t, restored, "snapshot taken after commit includes the held write")
}

func TestBackupRestore_ListNewestFirst(t *testing.T) {
	store, config := newOpenStore(t)
	manager := newBackupManager(t, store, config)

	first, err := manager.Backup()
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := manager.Backup()
	require.NoError(t, err)

	list, err := manager.ListBackups()
	require.NoError(t, err)
	require.Equal(t, []string{second, first}, list)
}

func TestBackupRestore_OperationsFailCleanlyAfterClose(t *testing.T) {
	store, config := newOpenStore(t)
	manager := newBackupManager(t, store, config)
	walkthroughs := sqlite.NewWalkthroughRepo(store)

	require.NoError(t, store.Close())

	_, err := walkthroughs.FindAll()
	require.ErrorIs(t, err, types.ErrNotInitialized)
	_, err = manager.Backup()
	require.ErrorIs(t, err, types.ErrNotInitialized)
}
