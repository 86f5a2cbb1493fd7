// Package fsutil provides filesystem helpers for locating capture files.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LatestCSV returns the most recently modified *.csv file in dir. The
// capture software drops one export per session into the raw directory, so
// "newest file" is the session the operator just recorded.
func LatestCSV(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read capture directory: %w", err)
	}

	var latest string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(dir, entry.Name())
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return "", fmt.Errorf("no CSV files in %s", dir)
	}
	return latest, nil
}

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
