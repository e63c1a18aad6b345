// Package paths resolves where tact keeps its data and configuration.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const appName = "tact"

// DataDir returns the directory that holds timer storage and the debug log.
// A non-empty override wins (with ~ expanded); otherwise ~/.tact.
// Falls back to ./.tact when the home directory cannot be determined.
func DataDir(override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return ExpandHome(override)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(home, "."+appName)
}

// ConfigDir returns ~/.config/tact.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DatabaseFile returns the SQLite database path inside dataDir.
func DatabaseFile(dataDir string) string {
	return filepath.Join(dataDir, appName+".db")
}

// LogFile returns the debug log path inside dataDir.
func LogFile(dataDir string) string {
	return filepath.Join(dataDir, "debug.log")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
