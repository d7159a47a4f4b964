package fontsource

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rook-computer/emogen/internal/logger"
	"github.com/rook-computer/emogen/internal/render"
)

// ///////////////////////////////////////////////
// File
// ///////////////////////////////////////////////

// File serves a font read from local disk. When watching, the file is
// reparsed after every write; a reparse that fails keeps the previous font.
type File struct {
	// path is the resolved font file.
	path string
	font atomic.Pointer[render.Font]
	log  logger.Logger

	// reloads receives a signal after each reload attempt, successful or
	// not. Buffered to 1 so bursts coalesce.
	reloads chan struct{}
	done    chan struct{}
	once    sync.Once
	fsw     *fsnotify.Watcher
	// pollInterval is used when fsnotify cannot watch the directory.
	pollInterval time.Duration
}

// ResolvePath expands a path or doublestar pattern to the first matching
// file in lexical order.
func ResolvePath(pattern string) (string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("%w: bad font pattern %q: %w", ErrFontUnavailable, pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no font file matches %q", ErrFontUnavailable, pattern)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// NewFile resolves pattern, parses the font and, if watch is set, starts
// watching it for changes. Close stops the watcher.
func NewFile(pattern string, watch bool, log logger.Logger) (*File, error) {
	if log == nil {
		log = logger.NoopLogger{}
	}
	path, err := ResolvePath(pattern)
	if err != nil {
		return nil, err
	}
	f := &File{
		path:         path,
		log:          log,
		reloads:      make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: 2 * time.Second,
	}
	parsed, err := f.load()
	if err != nil {
		return nil, err
	}
	f.font.Store(parsed)
	log.Infof("font", "loaded %s (%s)", path, parsed.Name())

	if watch {
		f.startWatch()
	}
	return f, nil
}

func (f *File) Font(context.Context) (*render.Font, error) {
	return f.font.Load(), nil
}

func (f *File) Name() string {
	return "file:" + f.path
}

// Path returns the resolved font file.
func (f *File) Path() string { return f.path }

// Reloads signals after each reload attempt.
func (f *File) Reloads() <-chan struct{} { return f.reloads }

// Close stops watching. It is safe to call more than once.
func (f *File) Close() error {
	var err error
	f.once.Do(func() {
		close(f.done)
		if f.fsw != nil {
			err = f.fsw.Close()
		}
	})
	return err
}

func (f *File) load() (*render.Font, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontUnavailable, err)
	}
	defer fh.Close()
	data, err := io.ReadAll(io.LimitReader(fh, maxFontBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFontUnavailable, f.path, err)
	}
	if len(data) > maxFontBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrFontUnavailable, f.path, maxFontBytes)
	}
	return parseFont(f.path, data)
}

func (f *File) reload() {
	parsed, err := f.load()
	if err != nil {
		f.log.Errorf("font", "reload %s failed, keeping previous font: %v", f.path, err)
	} else {
		f.font.Store(parsed)
		f.log.Infof("font", "reloaded %s (%s)", f.path, parsed.Name())
	}
	select {
	case f.reloads <- struct{}{}:
	default:
	}
}

// ///////////////////////////////////////////////
// Watching
// ///////////////////////////////////////////////

// startWatch watches the font's directory, so editors that replace the file
// by rename are seen too. Without fsnotify it falls back to polling.
func (f *File) startWatch() {
	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		if err = fsw.Add(filepath.Dir(f.path)); err == nil {
			f.fsw = fsw
			go f.watch()
			return
		}
		_ = fsw.Close()
	}
	f.log.Infof("font", "cannot watch %s, polling instead: %v", f.path, err)
	go f.poll()
}

func (f *File) watch() {
	name := filepath.Clean(f.path)
	for {
		select {
		case <-f.done:
			return
		case ev, ok := <-f.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				f.reload()
			}
		case err, ok := <-f.fsw.Errors:
			if !ok {
				return
			}
			f.log.Errorf("font", "watch error, polling instead: %v", err)
			go f.poll()
			return
		}
	}
}

func (f *File) poll() {
	var last time.Time
	if info, err := os.Stat(f.path); err == nil {
		last = info.ModTime()
	}
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			info, err := os.Stat(f.path)
			if err != nil || !info.ModTime().After(last) {
				continue
			}
			last = info.ModTime()
			f.reload()
		}
	}
}
