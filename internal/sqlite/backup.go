// Backup manager: point-in-time snapshots and restores of the database
// file. Backup holds an exclusive write transaction for the duration of
// the copy; Restore is the only operation that closes and reopens the
// shared handle, and it always leaves the caller with a usable handle,
// even when the restore itself fails.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tourforge/walkabout/pkg/types"
)

// Backup file name affixes. Timestamps are rendered with ':' and '.'
// replaced by '-'; createSnapshot guarantees each call its own file.
const (
	backupPrefix     = "backup-"
	preRestorePrefix = "pre-restore-"
)

// BackupManager snapshots and restores the store's database file. It
// operates on the same file the store has open and coordinates
// exclusivity through the engine's write lock, not through the
// repositories.
type BackupManager struct {
	store     *Store
	dbPath    string
	backupDir string
}

// NewBackupManager creates a backup manager for the store's database
// file. The database path is required explicitly; it is not inferred
// from the store. The backup directory is created if missing.
func NewBackupManager(store *Store, dbPath, backupDir string) (*BackupManager, error) {
	if store == nil || dbPath == "" || backupDir == "" {
		return nil, types.ErrInvalidInput
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup dir: %w", err)
	}
	return &BackupManager{store: store, dbPath: dbPath, backupDir: backupDir}, nil
}

// Backup copies the live database file to a timestamped path in the
// backup directory and returns that path. The store's single connection
// is checked out for the duration of the copy and an immediate
// transaction takes the engine's write lock, so concurrent writers
// block until the copy finishes, bounded by the connection's busy
// timeout. On copy failure the transaction rolls back and the partial
// file is removed, so the backup directory never holds a truncated
// snapshot under the backup naming convention.
func (m *BackupManager) Backup() (string, error) {
	db, err := m.store.Handle()
	if err != nil {
		return "", err
	}

	// The pool holds exactly one connection; checking it out waits for
	// any in-flight writer transaction and keeps other statements from
	// interleaving with the backup transaction.
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return "", fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return "", fmt.Errorf("acquiring write lock: %w", err)
	}

	backupPath, out, err := m.createSnapshot(backupPrefix)
	if err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		return "", fmt.Errorf("creating snapshot file: %w", err)
	}

	if err := copyInto(m.dbPath, out); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		os.Remove(backupPath)
		return "", fmt.Errorf("copying database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		os.Remove(backupPath)
		return "", fmt.Errorf("committing backup transaction: %w", err)
	}
	return backupPath, nil
}

// Restore overwrites the live database file with the named backup and
// rebinds the store to a freshly opened handle. Before overwriting, the
// current file is copied to a pre-restore snapshot in the backup
// directory so an accidental restore can itself be undone.
//
// If the backup file does not exist, Restore fails with
// ErrBackupNotFound before touching anything. If closing the live
// handle fails, Restore stops before touching the file and the store
// keeps its current binding; no reopen is attempted. For any later
// failure, a handle to whatever file state exists is still opened,
// rebound, and passed to onReopen before the original error is
// returned; the caller is never left without a connection.
//
// onReopen runs after the store lock is released, so the callback may
// go through the store and its repositories to rebind dependents.
func (m *BackupManager) Restore(path string, onReopen func(*sql.DB)) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", types.ErrBackupNotFound, path)
		}
		return fmt.Errorf("checking backup file: %w", err)
	}

	db, err := m.restoreLocked(path)

	if db != nil && onReopen != nil {
		onReopen(db)
	}
	return err
}

// restoreLocked performs the close, overwrite, and reopen steps under
// the store lock. It returns the rebound handle whenever one was
// opened, even when the restore itself failed.
func (m *BackupManager) restoreLocked(path string) (*sql.DB, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if m.store.db != nil {
		if err := m.store.db.Close(); err != nil {
			return nil, fmt.Errorf("closing live handle: %w", err)
		}
		m.store.db = nil
	}

	restoreErr := m.overwriteFromBackup(path)

	// Reopen regardless of the restore outcome.
	db, openErr := openDB(m.dbPath)
	if openErr == nil {
		m.store.db = db
	}

	if restoreErr != nil {
		if openErr != nil {
			return nil, errors.Join(restoreErr, fmt.Errorf("reopening database: %w", openErr))
		}
		return db, restoreErr
	}
	if openErr != nil {
		return nil, fmt.Errorf("reopening database: %w", openErr)
	}
	return db, nil
}

// overwriteFromBackup snapshots the current database file and replaces
// it with the backup's contents. The caller holds the store lock and
// has closed the live handle.
func (m *BackupManager) overwriteFromBackup(path string) error {
	if _, err := os.Stat(m.dbPath); err == nil {
		prePath, out, err := m.createSnapshot(preRestorePrefix)
		if err != nil {
			return fmt.Errorf("writing pre-restore snapshot: %w", err)
		}
		if err := copyInto(m.dbPath, out); err != nil {
			os.Remove(prePath)
			return fmt.Errorf("writing pre-restore snapshot: %w", err)
		}
	}
	if err := copyFile(path, m.dbPath); err != nil {
		return fmt.Errorf("restoring database file: %w", err)
	}
	return nil
}

// ListBackups returns the full paths of all files in the backup
// directory matching the backup naming convention, newest first.
// Pre-restore snapshots are not included.
func (m *BackupManager) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading backup dir: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), m.ext()) {
			names = append(names, e.Name())
		}
	}
	// Timestamped names sort lexicographically; reverse for newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(m.backupDir, name)
	}
	return paths, nil
}

// VerifyBackup opens the candidate file read-only and runs the engine's
// integrity check. Returns true only when the check reports "ok". Any
// failure to open or check is treated as invalid; VerifyBackup never
// returns an error.
func (m *BackupManager) VerifyBackup(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return false
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return false
	}
	return result == "ok"
}

// ext returns the database file's extension, used for all snapshot
// names so backups of walkabout.db are backup-<ts>.db.
func (m *BackupManager) ext() string {
	if ext := filepath.Ext(m.dbPath); ext != "" {
		return ext
	}
	return ".db"
}

// fileTimestamp renders the current time in the canonical storage
// format with ':' and '.' replaced for filesystem safety.
func fileTimestamp() string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(formatTime(time.Now()))
}

// createSnapshot opens a fresh snapshot file in the backup directory,
// exclusively, so a name is never reused. Timestamps have millisecond
// granularity; when a second snapshot lands in the same millisecond the
// create fails with "exists" and we wait out the millisecond instead of
// truncating the earlier file.
func (m *BackupManager) createSnapshot(prefix string) (string, *os.File, error) {
	for {
		path := filepath.Join(m.backupDir, prefix+fileTimestamp()+m.ext())
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
		time.Sleep(time.Millisecond)
	}
}

// copyFile stream-copies src to dst, truncating dst if it exists.
func copyFile(src, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	return copyInto(src, out)
}

// copyInto streams src into the already-open destination file, fsyncing
// before close. The destination is closed in all cases.
func copyInto(src string, out *os.File) error {
	in, err := os.Open(src)
	if err != nil {
		out.Close()
		return err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
