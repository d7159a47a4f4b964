package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/emogen/internal/render/layout"
	"golang.org/x/image/font"
	"golang.org/x/image/vector"
)

// Scale is an anisotropic text scale in pixels. Y is the pixel height
// spanned by the font's ascent and descent; X is the same measure applied
// horizontally.
type Scale struct {
	X, Y float64
}

func (s Scale) drawable() bool {
	return s.X > 0 && s.Y > 0 && !math.IsInf(s.X, 0) && !math.IsInf(s.Y, 0)
}

// FitScale returns the scale at which text, set at a height of height
// pixels, spans exactly width pixels. The advance widths are probed at the
// uniform scale height; a zero sum is treated as 1.
func FitScale(f *Font, text string, height, width float64) Scale {
	sum := 0.0
	for _, r := range text {
		sum += f.Advance(r, height)
	}
	if sum == 0 {
		sum = 1
	}
	return Scale{X: height * width / sum, Y: height}
}

// GlyphFit stretches each line of text to the full canvas width.
type GlyphFit struct {
	// FullTextPass draws the joined text once more over the whole canvas
	// after the per-line pass, as earlier deployments did.
	FullTextPass bool
}

// Render paints lines onto a fresh width×height canvas filled with bg. Each
// line gets an equal band of height/len(lines) rows; leftover rows at the
// bottom stay background. It never fails: a nil font or empty input yields
// the plain background.
func (g GlyphFit) Render(lines []string, fg, bg color.NRGBA, width, height int, f *Font) *image.NRGBA {
	width, height = max(width, 0), max(height, 0)
	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if f == nil || width == 0 || height == 0 {
		return canvas
	}
	if len(lines) == 0 {
		lines = []string{""}
	}

	src := image.NewUniform(fg)
	lr := newLineRaster()
	for i, row := range layout.Rows(canvas.Bounds(), len(lines)) {
		scale := FitScale(f, lines[i], float64(row.Dy()), float64(width))
		lr.drawText(canvas, src, f, lines[i], scale, row.Min)
	}

	if g.FullTextPass {
		text := strings.Join(lines, "\n")
		lr.drawText(canvas, src, f, text, FitScale(f, text, float64(height), float64(width)), image.Point{})
	}
	return canvas
}

// placedGlyph is a glyph outline in font units with its canvas transform.
type placedGlyph struct {
	points []truetype.Point
	ends   []int
	t      glyphTransform
}

// lineRaster is the scratch space shared by the lines of one Render. Each
// line rasterizes only the part of the canvas its outlines can reach, so
// many thin lines cost about as much as one line over the whole canvas.
type lineRaster struct {
	z       *vector.Rasterizer
	maskPix []uint8
	glyph   truetype.GlyphBuf
	placed  []placedGlyph
}

func newLineRaster() *lineRaster {
	return &lineRaster{z: vector.NewRasterizer(0, 0)}
}

// mask returns a contiguous alpha image covering r, reusing earlier storage.
func (lr *lineRaster) mask(r image.Rectangle) *image.Alpha {
	n := r.Dx() * r.Dy()
	if n > cap(lr.maskPix) {
		lr.maskPix = make([]uint8, n)
	}
	return &image.Alpha{Pix: lr.maskPix[:n], Stride: r.Dx(), Rect: r}
}

// drawText draws text left to right with its top at origin. Runes without a
// glyph take no space and draw nothing. Outlines may leave the line's band;
// they are clipped to the canvas only.
func (lr *lineRaster) drawText(dst *image.NRGBA, src image.Image, f *Font, text string, s Scale, origin image.Point) {
	if text == "" || !s.drawable() {
		return
	}
	b := dst.Bounds()
	sx, sy := f.unitScale(s.X), f.unitScale(s.Y)
	t := glyphTransform{
		originX:  float64(origin.X),
		baseline: float64(origin.Y) + f.ascent*sy,
		sx:       sx,
		sy:       sy,
	}

	lr.placed = lr.placed[:0]
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range text {
		if t.originX >= float64(b.Dx()) {
			break
		}
		idx := f.tt.Index(r)
		if idx == 0 {
			continue
		}
		if err := lr.glyph.Load(f.tt, f.upem, idx, font.HintingNone); err == nil && len(lr.glyph.Points) > 0 {
			for _, tp := range lr.glyph.Points {
				q := t.apply(tp)
				minX, maxX = math.Min(minX, q.x), math.Max(maxX, q.x)
				minY, maxY = math.Min(minY, q.y), math.Max(maxY, q.y)
			}
			lr.placed = append(lr.placed, placedGlyph{
				points: append([]truetype.Point(nil), lr.glyph.Points...),
				ends:   append([]int(nil), lr.glyph.Ends...),
				t:      t,
			})
		}
		t.originX += f.advanceUnits(idx) * sx
	}
	if len(lr.placed) == 0 || math.IsNaN(minX) || math.IsNaN(minY) || math.IsNaN(maxX) || math.IsNaN(maxY) {
		return
	}

	// Curves stay inside the hull of their control points, so the point
	// bounds cover everything the rasterizer can touch.
	area := pixelBounds(minX, minY, maxX, maxY).Intersect(b)
	if area.Empty() {
		return
	}
	lr.z.Reset(area.Dx(), area.Dy())
	lr.z.DrawOp = draw.Src
	path := newClipPath(lr.z, b.Dx(), b.Dy(), area.Min)
	for _, g := range lr.placed {
		start := 0
		for _, end := range g.ends {
			path.addContour(g.points[start:end], g.t)
			start = end
		}
	}

	// Coverage goes to a mask first so pixels the text misses are left
	// untouched by the composite.
	mask := lr.mask(area)
	lr.z.Draw(mask, area, image.Opaque, image.Point{})
	draw.DrawMask(dst, area, src, image.Point{}, mask, area.Min, draw.Over)
}

// pixelBounds returns the smallest pixel rectangle containing the box. Boxes
// too large for int are cut down to a range the canvas intersection handles.
func pixelBounds(minX, minY, maxX, maxY float64) image.Rectangle {
	const limit = 1 << 30
	clip := func(v float64) int { return int(math.Max(-limit, math.Min(limit, v))) }
	return image.Rect(
		clip(math.Floor(minX)), clip(math.Floor(minY)),
		clip(math.Ceil(maxX)), clip(math.Ceil(maxY)),
	)
}
