// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDBPath is where the expense database lives unless configured
// otherwise.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fennel.db"
	}
	return filepath.Join(home, ".local", "share", "fennel", "fennel.db")
}
