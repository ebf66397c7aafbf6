// Package storage provides persistent storage for game records, statistics,
// evaluator weights and transposition table snapshots.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "vidro"

// DataDirEnv overrides the data directory when set.
const DataDirEnv = "VIDRO_DATA_DIR"

// GetDataDir returns the data directory, creating it if needed:
// $VIDRO_DATA_DIR when set, otherwise
// - macOS: ~/Library/Application Support/vidro/
// - Linux: $XDG_DATA_HOME/vidro/ or ~/.local/share/vidro/
// - Windows: %APPDATA%/vidro/
func GetDataDir() (string, error) {
	dir := os.Getenv(DataDirEnv)
	if dir == "" {
		base, err := platformDataHome()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, appName)
	}
	return dir, os.MkdirAll(dir, 0755)
}

// platformDataHome returns the per-user base directory for application data.
func platformDataHome() (string, error) {
	var env string
	var fallback []string
	switch runtime.GOOS {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}
	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// GetDatabaseDir returns the badger directory inside the data directory.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(dataDir, "db")
	return dbDir, os.MkdirAll(dbDir, 0755)
}
