package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{" warn ", LevelWarn},
		{"error", LevelError},
		{"fail", LevelFail},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelName(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{LevelTrace, "TRACE"},
		{LevelTrace - 4, "TRACE"},
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelFail, "FAIL"},
	}
	for _, tt := range tests {
		if got := levelName(tt.level); got != tt.want {
			t.Errorf("levelName(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

var lineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z \[INFO\] rendered \| g\.format=png, g\.w=128\n$`)

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, LevelInfo)).WithGroup("g")
	l.Info("rendered", "format", "png", "w", 128)
	if !lineRe.MatchString(buf.String()) {
		t.Errorf("unexpected line %q", buf.String())
	}
}

func TestHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, LevelInfo)).With("component", "web")
	l.Info("listening", "addr", ":8080")
	if !strings.HasSuffix(buf.String(), "listening | component=web, addr=:8080\n") {
		t.Errorf("unexpected line %q", buf.String())
	}
}

func TestHandlerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, LevelWarn))
	l.Info("hidden")
	Trace(l, "hidden")
	l.Warn("shown")
	Fail(l, "fatal")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("records below WARN written: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown") || !strings.Contains(out, "[FAIL] fatal") {
		t.Errorf("missing records: %q", out)
	}
}

func TestHandlerDynamicLevel(t *testing.T) {
	var buf bytes.Buffer
	var lv slog.LevelVar
	lv.Set(LevelInfo)
	l := slog.New(NewHandler(&buf, &lv))
	l.Debug("before")
	lv.Set(LevelDebug)
	l.Debug("after")
	if strings.Contains(buf.String(), "before") || !strings.Contains(buf.String(), "after") {
		t.Errorf("level var not honored: %q", buf.String())
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	c := NewComponent(slog.New(NewHandler(&buf, LevelInfo)))
	c.Infof("font", "loaded %s", "Go")
	c.Errorf("web", "status %d", 500)
	out := buf.String()
	if !strings.Contains(out, "[INFO] loaded Go | component=font") {
		t.Errorf("Infof line missing: %q", out)
	}
	if !strings.Contains(out, "[ERROR] status 500 | component=web") {
		t.Errorf("Errorf line missing: %q", out)
	}

	// Zero values must not panic.
	NewComponent(nil).Infof("x", "y")
	NoopLogger{}.Errorf("x", "y")
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emogen.log")
	l, closer := New(path, LevelInfo, 1)
	l.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[INFO] hello") {
		t.Errorf("log file = %q", data)
	}
}
