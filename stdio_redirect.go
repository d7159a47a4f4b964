package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// openStdioLog opens the crash log for appending, creating its directory,
// and marks the start of this run so consecutive crashes can be told apart.
func openStdioLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("stdio log %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("stdio log %s: %w", path, err)
	}
	if _, err := fmt.Fprintf(f, "=== emogen pid %d started %s ===\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339)); err != nil {
		f.Close()
		return nil, fmt.Errorf("stdio log %s: %w", path, err)
	}
	return f, nil
}
