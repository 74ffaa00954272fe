// Package paths resolves configuration and data directory locations for
// the walkabout CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative default directory names.
const (
	DefaultConfigDirName = ".walkabout"
	DefaultDataDirName   = ".walkabout-db"
)

// Well-known names inside the data directory.
const (
	DatabaseFileName = "walkabout.db"
	BackupDirName    = "backups"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "WALKABOUT_CONFIG_DIR"
	EnvDataDir   = "WALKABOUT_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/walkabout (fallback ~/.config/walkabout)
// macOS:   ~/Library/Application Support/walkabout
// Windows: %APPDATA%/walkabout
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "walkabout"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "walkabout"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "walkabout"), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/walkabout (fallback ~/.local/share/walkabout)
// macOS:   ~/Library/Application Support/walkabout
// Windows: %APPDATA%/walkabout
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "walkabout"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "walkabout"), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "walkabout"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > WALKABOUT_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence
// chain: flag > config-file value > WALKABOUT_DATA_DIR env >
// $(CWD)/.walkabout-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// DatabasePath returns the database file path inside the data directory.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, DatabaseFileName)
}

// BackupDir returns the backup directory inside the data directory.
func BackupDir(dataDir string) string {
	return filepath.Join(dataDir, BackupDirName)
}
