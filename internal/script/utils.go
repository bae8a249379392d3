package script

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultDir is where generated scripts are kept.
var DefaultDir = filepath.Join("input", "scripts")

// GeneratePath creates a timestamped script filename in dir
func GeneratePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("session_%s.yaml", timestamp))
}

// FindLatest finds the most recent script file in dir
func FindLatest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read scripts directory: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var scripts []candidate
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		scripts = append(scripts, candidate{filepath.Join(dir, entry.Name()), info.ModTime()})
	}

	if len(scripts) == 0 {
		return "", fmt.Errorf("no script files found in %s", dir)
	}

	// newest first
	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].mod.After(scripts[j].mod)
	})

	return scripts[0].path, nil
}
