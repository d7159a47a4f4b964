package web

import (
	"context"
	"image"

	"github.com/rook-computer/emogen/internal/colorcode"
	"github.com/rook-computer/emogen/internal/fontsource"
	"github.com/rook-computer/emogen/internal/logger"
	"github.com/rook-computer/emogen/internal/moji"
	"github.com/rook-computer/emogen/internal/render"
	"github.com/rook-computer/emogen/internal/state"
)

// EmojiDeps is everything the page and image routes need.
type EmojiDeps struct {
	Fonts    fontsource.Provider
	Colors   *colorcode.Resolver
	Renderer render.GlyphFit
	Moji     moji.Decoder
	Store    *state.Store
	// Canvas is the output size; zero means 128×128.
	Canvas      image.Point
	BaseDomain  string
	ServiceName string
	Log         logger.Logger
}

func (d EmojiDeps) withDefaults() EmojiDeps {
	out := d
	if out.Fonts == nil {
		out.Fonts = NoopFontProvider{}
	}
	if out.Colors == nil {
		out.Colors = colorcode.NewResolver(colorcode.PolicyBrand, nil)
	}
	if out.Store == nil {
		out.Store = state.NewStore()
	}
	if out.Canvas.X <= 0 || out.Canvas.Y <= 0 {
		out.Canvas = image.Pt(render.DefaultCanvasWidth, render.DefaultCanvasHeight)
	}
	if out.ServiceName == "" {
		out.ServiceName = "えもじぇん"
	}
	if out.Log == nil {
		out.Log = logger.NoopLogger{}
	}
	return out
}

// NoopFontProvider fails every lookup.
type NoopFontProvider struct{ Err error }

func (p NoopFontProvider) Font(context.Context) (*render.Font, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return nil, fontsource.ErrFontUnavailable
}

func (NoopFontProvider) Name() string { return "none" }

// APIV1Deps feeds the status endpoint.
type APIV1Deps struct {
	Store  *state.Store
	Fonts  fontsource.Provider
	Canvas image.Point
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Store == nil {
		out.Store = state.NewStore()
	}
	if out.Fonts == nil {
		out.Fonts = NoopFontProvider{}
	}
	if out.Canvas.X <= 0 || out.Canvas.Y <= 0 {
		out.Canvas = image.Pt(render.DefaultCanvasWidth, render.DefaultCanvasHeight)
	}
	return out
}
