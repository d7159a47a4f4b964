// Package fontsource supplies the font the renderer draws with.
//
// Three providers exist: an embedded font compiled into the binary, a font
// file on local disk that can be reloaded when it changes, and a remote
// object fetched over HTTP on every render.
package fontsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rook-computer/emogen/internal/config"
	"github.com/rook-computer/emogen/internal/logger"
	"github.com/rook-computer/emogen/internal/render"
	"github.com/tdewolff/font"
)

// ErrFontUnavailable is wrapped by every error a Provider returns.
var ErrFontUnavailable = errors.New("font unavailable")

// Provider resolves the font for one render.
type Provider interface {
	Font(ctx context.Context) (*render.Font, error)
	// Name describes the font source for logs and the status API.
	Name() string
}

// New builds the provider selected by cfg. The returned close function
// releases watchers and is never nil.
func New(cfg config.FontConfig, log logger.Logger) (Provider, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Source {
	case "", "embedded":
		p, err := NewEmbedded(nil)
		return p, noop, err
	case "file":
		p, err := NewFile(cfg.Path, cfg.Watch, log)
		if err != nil {
			return nil, noop, err
		}
		return p, p.Close, nil
	case "url":
		return NewRemote(cfg.URL, time.Duration(cfg.TimeoutSeconds)*time.Second), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown font source %q", cfg.Source)
	}
}

// maxFontBytes caps font payloads read from disk or the network.
const maxFontBytes = 32 << 20

// parseFont parses TrueType data, converting WOFF and WOFF2 containers to
// SFNT first. name only appears in errors.
func parseFont(name string, data []byte) (*render.Font, error) {
	if isWebFont(data) {
		sfnt, err := font.ToSFNT(data)
		if err != nil {
			return nil, fmt.Errorf("%w: convert %s to sfnt: %w", ErrFontUnavailable, name, err)
		}
		data = sfnt
	}
	f, err := render.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFontUnavailable, name, err)
	}
	return f, nil
}

// isWebFont reports whether data starts with the WOFF ("wOFF") or WOFF2
// ("wOF2") magic. The file extension is not trusted.
func isWebFont(data []byte) bool {
	return bytes.HasPrefix(data, []byte("wOFF")) || bytes.HasPrefix(data, []byte("wOF2"))
}
