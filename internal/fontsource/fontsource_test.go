package fontsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rook-computer/emogen/internal/config"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// ///////////////////////////////////////////////
// Embedded
// ///////////////////////////////////////////////

func TestEmbeddedDefault(t *testing.T) {
	p, err := NewEmbedded(nil)
	if err != nil {
		t.Fatalf("NewEmbedded: %v", err)
	}
	f, err := p.Font(context.Background())
	if err != nil || f == nil {
		t.Fatalf("Font() = %v, %v", f, err)
	}
	if !f.HasGlyph('A') {
		t.Error("default font has no 'A'")
	}
	if !strings.HasPrefix(p.Name(), "embedded") {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestEmbeddedInvalid(t *testing.T) {
	_, err := NewEmbedded([]byte("not a font"))
	if !errors.Is(err, ErrFontUnavailable) {
		t.Errorf("err = %v, want ErrFontUnavailable", err)
	}
}

func TestIsWebFont(t *testing.T) {
	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte("wOF2\x00\x01"), true},
		{[]byte("wOFF\x00\x01"), true},
		{[]byte("\x00\x01\x00\x00"), false},
		{[]byte("OTTO"), false},
		{[]byte("wO"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := isWebFont(tt.data); got != tt.want {
			t.Errorf("isWebFont(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// File
// ///////////////////////////////////////////////

func writeFont(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, filepath.Join(dir, "b", "Zed.ttf"), goregular.TTF)
	writeFont(t, filepath.Join(dir, "a", "deep", "Alpha.ttf"), goregular.TTF)
	writeFont(t, filepath.Join(dir, "a", "notes.txt"), []byte("x"))

	tests := []struct {
		pattern string
		want    string
		wantErr bool
	}{
		{filepath.Join(dir, "**", "*.ttf"), filepath.Join(dir, "a", "deep", "Alpha.ttf"), false},
		{filepath.Join(dir, "b", "Zed.ttf"), filepath.Join(dir, "b", "Zed.ttf"), false},
		{filepath.Join(dir, "*.otf"), "", true},
		{filepath.Join(dir, "missing.ttf"), "", true},
	}
	for _, tt := range tests {
		got, err := ResolvePath(tt.pattern)
		if tt.wantErr {
			if !errors.Is(err, ErrFontUnavailable) {
				t.Errorf("ResolvePath(%q) err = %v, want ErrFontUnavailable", tt.pattern, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ResolvePath(%q) = %q, %v; want %q", tt.pattern, got, err, tt.want)
		}
	}
}

func TestFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	writeFont(t, path, goregular.TTF)

	p, err := NewFile(path, false, nil)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer p.Close()

	f, err := p.Font(context.Background())
	if err != nil || f == nil {
		t.Fatalf("Font() = %v, %v", f, err)
	}
	if p.Name() != "file:"+path {
		t.Errorf("Name() = %q", p.Name())
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	writeFont(t, path, []byte("garbage"))
	if _, err := NewFile(path, false, nil); !errors.Is(err, ErrFontUnavailable) {
		t.Errorf("err = %v, want ErrFontUnavailable", err)
	}
}

func waitReload(t *testing.T, p *File) {
	t.Helper()
	select {
	case <-p.Reloads():
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestFileWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	writeFont(t, path, goregular.TTF)

	p, err := NewFile(path, true, nil)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer p.Close()

	before, _ := p.Font(context.Background())
	writeFont(t, path, gomono.TTF)

	deadline := time.Now().Add(10 * time.Second)
	for {
		waitReload(t, p)
		after, _ := p.Font(context.Background())
		if after != before && after.Name() == "Go Mono" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("font not replaced, family = %q", after.Name())
		}
	}

	// A broken write keeps the last good font.
	writeFont(t, path, []byte("garbage"))
	waitReload(t, p)
	if f, _ := p.Font(context.Background()); f == nil || f.Name() != "Go Mono" {
		t.Error("broken font replaced the last good one")
	}
}

// ///////////////////////////////////////////////
// Remote
// ///////////////////////////////////////////////

func fastRetries(r *Remote) {
	r.client.RetryWaitMin = time.Millisecond
	r.client.RetryWaitMax = 5 * time.Millisecond
}

func TestRemoteFetchesEveryCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(goregular.TTF)
	}))
	defer srv.Close()

	p := NewRemote(srv.URL+"/fonts/goregular.ttf", time.Second)
	for i := 0; i < 2; i++ {
		f, err := p.Font(context.Background())
		if err != nil || f == nil || !f.HasGlyph('A') {
			t.Fatalf("Font() = %v, %v", f, err)
		}
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
	if !strings.HasPrefix(p.Name(), "url:") {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestRemoteRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(goregular.TTF)
	}))
	defer srv.Close()

	p := NewRemote(srv.URL, time.Second)
	fastRetries(p)
	if _, err := p.Font(context.Background()); err != nil {
		t.Fatalf("Font() after one 503 = %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}
}

func TestRemoteErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"always failing", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		}},
		{"not a font", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			p := NewRemote(srv.URL, time.Second)
			fastRetries(p)
			if _, err := p.Font(context.Background()); !errors.Is(err, ErrFontUnavailable) {
				t.Errorf("err = %v, want ErrFontUnavailable", err)
			}
		})
	}
}

func TestRemoteCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(goregular.TTF)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewRemote(srv.URL, time.Second)
	if _, err := p.Font(ctx); !errors.Is(err, ErrFontUnavailable) {
		t.Errorf("err = %v, want ErrFontUnavailable", err)
	}
}

// ///////////////////////////////////////////////
// New
// ///////////////////////////////////////////////

func TestNewFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	writeFont(t, path, goregular.TTF)

	tests := []struct {
		cfg     config.FontConfig
		prefix  string
		wantErr bool
	}{
		{config.FontConfig{Source: "embedded"}, "embedded", false},
		{config.FontConfig{Source: "file", Path: path}, "file:", false},
		{config.FontConfig{Source: "url", URL: "https://fonts.example.com/a.ttf", TimeoutSeconds: 1}, "url:", false},
		{config.FontConfig{Source: "file", Path: filepath.Join(t.TempDir(), "none.ttf")}, "", true},
		{config.FontConfig{Source: "r2"}, "", true},
	}
	for _, tt := range tests {
		p, closeFn, err := New(tt.cfg, nil)
		if closeFn == nil {
			t.Fatalf("New(%+v) returned nil close func", tt.cfg)
		}
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%+v): want error", tt.cfg)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%+v): %v", tt.cfg, err)
		}
		if !strings.HasPrefix(p.Name(), tt.prefix) {
			t.Errorf("New(%+v).Name() = %q, want prefix %q", tt.cfg, p.Name(), tt.prefix)
		}
		if err := closeFn(); err != nil {
			t.Errorf("close: %v", err)
		}
	}
}
