package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the path to the Inkgate data directory.
// - DATA_DIR env var when set
// - Windows: %APPDATA%\inkgate
// - Other OS: ~/.inkgate
func DataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "inkgate")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".inkgate"
	}
	return filepath.Join(home, ".inkgate")
}

// DBPath returns the default path to the SQLite database file.
func DBPath() string {
	return filepath.Join(DataDir(), "inkgate.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}
