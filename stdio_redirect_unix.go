//go:build unix

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// redirectStdIO points the stdout and stderr descriptors at the log file, so
// panics and writes from any goroutine land there.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := openStdioLog(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, std := range []struct {
		name string
		file *os.File
	}{{"stdout", os.Stdout}, {"stderr", os.Stderr}} {
		if err := unix.Dup2(int(f.Fd()), int(std.file.Fd())); err != nil {
			return fmt.Errorf("redirect %s to %s: %w", std.name, path, err)
		}
	}
	return nil
}
