package render

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Font is a parsed TrueType font. Metrics are read from the font tables on
// every query; nothing is cached between calls. A Font is safe for
// concurrent use.
type Font struct {
	tt *truetype.Font
	// upem loads glyphs and metrics in unscaled font units.
	upem fixed.Int26_6
	// ascent and descent are in font units; descent is positive below the
	// baseline.
	ascent  float64
	descent float64
}

// ParseFont parses TrueType font data.
func ParseFont(data []byte) (*Font, error) {
	tt, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return NewFont(tt), nil
}

// NewFont wraps an already parsed font.
func NewFont(tt *truetype.Font) *Font {
	upem := tt.FUnitsPerEm()
	// At a size of one em per font unit the face metrics come back in font
	// units (26.6).
	face := truetype.NewFace(tt, &truetype.Options{Size: float64(upem), DPI: 72, Hinting: font.HintingNone})
	m := face.Metrics()
	_ = face.Close()

	f := &Font{
		tt:      tt,
		upem:    fixed.Int26_6(upem),
		ascent:  float64(m.Ascent) / 64,
		descent: float64(m.Descent) / 64,
	}
	if f.ascent+f.descent <= 0 {
		f.ascent, f.descent = float64(upem), 0
	}
	return f
}

// Name returns the font family name, or "" when the font has none.
func (f *Font) Name() string {
	return f.tt.Name(truetype.NameIDFontFamily)
}

// HasGlyph reports whether the font maps r to a real glyph.
func (f *Font) HasGlyph(r rune) bool {
	return f.tt.Index(r) != 0
}

// Advance returns the horizontal advance of r, in pixels, when the font is
// scaled so that ascent to descent spans height pixels. Runes without a
// glyph advance by zero.
func (f *Font) Advance(r rune, height float64) float64 {
	idx := f.tt.Index(r)
	if idx == 0 {
		return 0
	}
	return f.advanceUnits(idx) * f.unitScale(height)
}

func (f *Font) advanceUnits(idx truetype.Index) float64 {
	return float64(f.tt.HMetric(f.upem, idx).AdvanceWidth)
}

// unitScale converts a pixel height into pixels per font unit.
func (f *Font) unitScale(height float64) float64 {
	return height / (f.ascent + f.descent)
}
