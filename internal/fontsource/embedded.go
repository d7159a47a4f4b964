package fontsource

import (
	"context"

	"github.com/rook-computer/emogen/internal/assets"
	"github.com/rook-computer/emogen/internal/render"
)

// Embedded serves a font parsed once from bytes in the binary.
type Embedded struct {
	font *render.Font
}

// NewEmbedded parses data, or the bundled default font when data is nil.
func NewEmbedded(data []byte) (*Embedded, error) {
	name := "embedded"
	if data == nil {
		data = assets.DefaultFont
		name = assets.DefaultFontName
	}
	f, err := parseFont(name, data)
	if err != nil {
		return nil, err
	}
	return &Embedded{font: f}, nil
}

func (e *Embedded) Font(context.Context) (*render.Font, error) {
	return e.font, nil
}

func (e *Embedded) Name() string {
	if n := e.font.Name(); n != "" {
		return "embedded:" + n
	}
	return "embedded"
}
