// Package config loads the emogen TOML configuration.
//
// Values are layered: built-in defaults, then the config file, then the
// EMOGEN_* environment (see web.DefaultServerConfigFromEnv), then flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rook-computer/emogen/internal/atomicfile"
	"github.com/rook-computer/emogen/internal/colorcode"
)

// MaxCanvasSize bounds both canvas dimensions.
const MaxCanvasSize = 4096

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config is the top-level configuration.
type Config struct {
	// Server holds HTTP listener and site settings.
	Server ServerConfig `toml:"server"`
	// Render holds canvas settings.
	Render RenderConfig `toml:"render"`
	// Colors holds the color fallback policy.
	Colors ColorsConfig `toml:"colors"`
	// Font selects where the font comes from.
	Font FontConfig `toml:"font"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// ServerConfig holds HTTP listener and site settings.
type ServerConfig struct {
	// Listen is the TCP address to listen on.
	Listen string `toml:"listen"`
	// Dev enables permissive CORS for local development.
	Dev bool `toml:"dev"`
	// BaseDomain is stripped from the request host before reading color
	// codes from the subdomain.
	BaseDomain string `toml:"base_domain"`
	// ServiceName is shown on the index page.
	ServiceName string `toml:"service_name"`
}

// RenderConfig holds canvas settings.
type RenderConfig struct {
	// Width is the canvas width in pixels.
	Width int `toml:"width"`
	// Height is the canvas height in pixels.
	Height int `toml:"height"`
	// FullTextPass draws the whole text once more over the full canvas
	// after the per-line pass.
	FullTextPass bool `toml:"full_text_pass"`
	// NormalizeNFC composes decoded text to NFC before drawing. Off, the
	// decoded bytes are drawn as sent.
	NormalizeNFC bool `toml:"normalize_nfc"`
}

// ColorsConfig holds the color fallback policy.
type ColorsConfig struct {
	// Fallback is "brand" or "random".
	Fallback string `toml:"fallback"`
	// Seed seeds the random color source; 0 seeds from the clock.
	Seed uint64 `toml:"seed"`
}

// FontConfig selects where the font comes from.
type FontConfig struct {
	// Source is "embedded", "file" or "url".
	Source string `toml:"source"`
	// Path is the font file for source "file". Glob patterns are allowed;
	// the first match in sorted order is used.
	Path string `toml:"path,omitempty"`
	// URL is fetched on every render for source "url".
	URL string `toml:"url,omitempty"`
	// Watch reloads a "file" font when it changes on disk.
	Watch bool `toml:"watch"`
	// TimeoutSeconds bounds each remote fetch.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `toml:"level"`
	// File is the log file; empty logs to stderr.
	File string `toml:"file,omitempty"`
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Defaults
// ///////////////////////////////////////////////

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:      ":8080",
			BaseDomain:  "urem.uk",
			ServiceName: "えもじぇん",
		},
		Render: RenderConfig{
			Width:  128,
			Height: 128,
		},
		Colors: ColorsConfig{
			Fallback: string(colorcode.PolicyBrand),
		},
		Font: FontConfig{
			Source:         "embedded",
			Watch:          true,
			TimeoutSeconds: 10,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load decodes the TOML file at path over DefaultConfig and validates the
// result. An empty path, or a path that does not exist, yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data over cfg and validates it. Unknown keys are rejected
// so typos do not go unnoticed.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("parse config: unknown keys %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Save writes c to path as TOML.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return errors.New("server.listen must not be empty")
	}
	if strings.TrimSpace(c.Server.BaseDomain) == "" {
		return errors.New("server.base_domain must not be empty")
	}

	if c.Render.Width < 1 || c.Render.Width > MaxCanvasSize {
		return fmt.Errorf("render.width must be in 1..%d, got %d", MaxCanvasSize, c.Render.Width)
	}
	if c.Render.Height < 1 || c.Render.Height > MaxCanvasSize {
		return fmt.Errorf("render.height must be in 1..%d, got %d", MaxCanvasSize, c.Render.Height)
	}

	if _, err := colorcode.ParsePolicy(c.Colors.Fallback); err != nil {
		return fmt.Errorf("colors.fallback: %w", err)
	}

	switch c.Font.Source {
	case "embedded":
	case "file":
		if c.Font.Path == "" {
			return errors.New(`font.path is required when font.source is "file"`)
		}
	case "url":
		u, err := url.Parse(c.Font.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("font.url %q must be an absolute http(s) URL", c.Font.URL)
		}
	default:
		return fmt.Errorf("invalid font.source %q: must be embedded, file, or url", c.Font.Source)
	}
	if c.Font.TimeoutSeconds <= 0 {
		return fmt.Errorf("font.timeout_seconds must be > 0, got %d", c.Font.TimeoutSeconds)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}
	return nil
}

// Policy returns the parsed color fallback policy. It assumes Validate
// passed.
func (c *Config) Policy() colorcode.Policy {
	p, _ := colorcode.ParsePolicy(c.Colors.Fallback)
	return p
}
