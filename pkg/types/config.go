// Store configuration and validation.
package types

import "errors"

// Config holds the parameters for Store.Open.
type Config struct {
	// DBPath is the path of the SQLite database file. The parent
	// directory is created if it does not exist.
	DBPath string `json:"db_path" yaml:"db_path"`

	// BackupDir is the directory where backup snapshots are written.
	// Created on demand by the backup manager.
	BackupDir string `json:"backup_dir" yaml:"backup_dir"`
}

// Config validation errors.
var (
	ErrDBPathEmpty    = errors.New("db_path must not be empty")
	ErrBackupDirEmpty = errors.New("backup_dir must not be empty")
)

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return ErrDBPathEmpty
	}
	if c.BackupDir == "" {
		return ErrBackupDirEmpty
	}
	return nil
}
