// Tests for store lifecycle and schema management.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tourforge/walkabout/pkg/types"
)

// newTestStore opens a store against a fresh temp directory and returns
// it with its config.
func newTestStore(t *testing.T) (*Store, types.Config) {
	t.Helper()
	tmpDir := t.TempDir()

	config := types.Config{
		DBPath:    filepath.Join(tmpDir, "walkabout.db"),
		BackupDir: filepath.Join(tmpDir, "backups"),
	}

	s := NewStore()
	if err := s.Open(config); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, config
}

func TestStore_Open(t *testing.T) {
	s, config := newTestStore(t)

	if _, err := os.Stat(config.DBPath); os.IsNotExist(err) {
		t.Error("database file not created")
	}

	// Double open fails.
	if err := s.Open(config); err != types.ErrAlreadyOpen {
		t.Errorf("expected ErrAlreadyOpen, got %v", err)
	}
}

func TestStore_OpenValidatesConfig(t *testing.T) {
	s := NewStore()
	if err := s.Open(types.Config{}); err != types.ErrDBPathEmpty {
		t.Errorf("expected ErrDBPathEmpty, got %v", err)
	}
}

func TestStore_OpenIsIdempotentOnSchema(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{
		DBPath:    filepath.Join(tmpDir, "walkabout.db"),
		BackupDir: filepath.Join(tmpDir, "backups"),
	}

	// Open, write, close, reopen: schema init must not disturb data.
	s := NewStore()
	if err := s.Open(config); err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	repo := NewWalkthroughRepo(s)
	if _, err := repo.Create(types.WalkthroughInput{Name: "Tour"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := s.Open(config); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	all, err := repo.FindAll()
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 walkthrough after reopen, got %d", len(all))
	}
}

func TestStore_Close(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Idempotent.
	if err := s.Close(); err != nil {
		t.Errorf("second Close should not error, got %v", err)
	}

	if _, err := s.Handle(); err != types.ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}

	// Repository calls against a closed store fail cleanly.
	repo := NewWalkthroughRepo(s)
	if _, err := repo.FindAll(); err != types.ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized from repo, got %v", err)
	}
}

func TestStore_HandleBeforeOpen(t *testing.T) {
	s := NewStore()
	if _, err := s.Handle(); err != types.ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestStore_Reset(t *testing.T) {
	s, _ := newTestStore(t)

	walkthroughs := NewWalkthroughRepo(s)
	progress := NewProgressRepo(s)

	w, err := walkthroughs.Create(types.WalkthroughInput{Name: "Tour", IsActive: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := progress.Create(types.ProgressInput{UserID: "u1", WalkthroughID: w.ID}); err != nil {
		t.Fatalf("progress Create failed: %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	all, err := walkthroughs.FindAll()
	if err != nil {
		t.Fatalf("FindAll after Reset failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty store after Reset, got %d walkthroughs", len(all))
	}

	// Schema is usable again.
	if _, err := walkthroughs.Create(types.WalkthroughInput{Name: "Again"}); err != nil {
		t.Errorf("Create after Reset failed: %v", err)
	}
}

func TestStore_ForeignKeysEnforced(t *testing.T) {
	s, _ := newTestStore(t)

	db, err := s.Handle()
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("querying foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Error("foreign_keys pragma not enabled on connection")
	}
}
