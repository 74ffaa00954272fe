// Standard error values for store lifecycle, validation, and backups.
package types

import "errors"

// Store lifecycle errors.
var (
	// ErrNotInitialized is returned by operations that need a live
	// database handle before Open, or after Close.
	ErrNotInitialized = errors.New("store is not initialized")

	// ErrAlreadyOpen is returned by Open when the store already holds
	// a live handle.
	ErrAlreadyOpen = errors.New("store is already open")
)

// Validation errors.
var (
	ErrInvalidID       = errors.New("invalid entity ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidStep     = errors.New("step must have title, content, and target")
	ErrInvalidPosition = errors.New("unknown step position")
)

// ErrConstraint wraps foreign-key and uniqueness violations reported by
// the engine. Use errors.Is to test for it.
var ErrConstraint = errors.New("constraint violation")

// Backup errors.
var (
	// ErrBackupNotFound is returned by Restore when the named backup
	// file does not exist. Nothing is touched in that case.
	ErrBackupNotFound = errors.New("backup file not found")
)
