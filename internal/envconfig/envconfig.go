// Package envconfig loads .env files ahead of config loading, so that
// environment variables referenced by internal/config have a chance to be
// populated even when the process isn't launched with them already set.
package envconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Load searches the current directory and each of its parents for a .env
// file and loads every one found, nearest-first, without overriding
// variables already present in the process environment (godotenv.Load's
// default precedence).
func Load() error {
	paths, err := findEnvFiles(".env")
	if err != nil {
		return fmt.Errorf("envconfig: %w", err)
	}
	if len(paths) == 0 {
		return nil
	}
	return godotenv.Load(paths...)
}

func findEnvFiles(name string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	var found []string
	for {
		p := filepath.Join(cwd, name)
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}
	return found, nil
}
