package render

import (
	"image"
	"math"
	"sort"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/vector"
)

type point struct{ x, y float64 }

func mid(a, b point) point { return point{(a.x + b.x) / 2, (a.y + b.y) / 2} }

// maxCurveSteps bounds the flattening of one quadratic segment.
const maxCurveSteps = 64

// clipPath feeds outlines to a vector.Rasterizer after projecting every point
// of the path onto the canvas rectangle. Projection keeps the covered area
// inside the canvas unchanged, and keeps arbitrarily large coordinates away
// from the rasterizer. The rasterizer may cover only part of the canvas;
// off is the canvas position of its origin.
type clipPath struct {
	z    *vector.Rasterizer
	w, h float64
	off  point
	pen  point
}

func newClipPath(z *vector.Rasterizer, width, height int, off image.Point) *clipPath {
	return &clipPath{
		z:   z,
		w:   float64(width),
		h:   float64(height),
		off: point{float64(off.X), float64(off.Y)},
	}
}

func (p *clipPath) clamp(q point) (float32, float32) {
	x := math.Min(math.Max(q.x, 0), p.w) - p.off.x
	y := math.Min(math.Max(q.y, 0), p.h) - p.off.y
	return float32(x), float32(y)
}

func (p *clipPath) moveTo(q point) {
	p.z.MoveTo(p.clamp(q))
	p.pen = q
}

// lineTo splits the segment where it crosses a canvas edge. Within each
// piece the projection is affine, so clamping the piece's end is exact.
func (p *clipPath) lineTo(q point) {
	a := p.pen
	var ts [6]float64
	n := 0
	cross := func(from, to, edge float64) {
		if (from < edge) != (to < edge) {
			if t := (edge - from) / (to - from); t > 0 && t < 1 {
				ts[n] = t
				n++
			}
		}
	}
	cross(a.x, q.x, 0)
	cross(a.x, q.x, p.w)
	cross(a.y, q.y, 0)
	cross(a.y, q.y, p.h)
	sort.Float64s(ts[:n])
	for _, t := range ts[:n] {
		p.z.LineTo(p.clamp(point{a.x + t*(q.x-a.x), a.y + t*(q.y-a.y)}))
	}
	p.z.LineTo(p.clamp(q))
	p.pen = q
}

// quadTo flattens the quadratic Bézier from the pen through control b to c.
func (p *clipPath) quadTo(b, c point) {
	a := p.pen
	dev := math.Hypot(a.x-2*b.x+c.x, a.y-2*b.y+c.y)
	steps := int(math.Ceil(math.Sqrt(dev)))
	if steps < 1 {
		steps = 1
	} else if steps > maxCurveSteps {
		steps = maxCurveSteps
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		u := 1 - t
		p.lineTo(point{
			u*u*a.x + 2*u*t*b.x + t*t*c.x,
			u*u*a.y + 2*u*t*b.y + t*t*c.y,
		})
	}
}

func (p *clipPath) close() {
	p.z.ClosePath()
}

// glyphTransform maps font units to canvas pixels. Font Y grows upward.
type glyphTransform struct {
	originX, baseline float64
	sx, sy            float64
}

func (t glyphTransform) apply(tp truetype.Point) point {
	return point{
		t.originX + float64(tp.X)*t.sx,
		t.baseline - float64(tp.Y)*t.sy,
	}
}

func onCurve(tp truetype.Point) bool { return tp.Flags&0x01 != 0 }

// addContour adds one closed TrueType contour. Consecutive off-curve points
// imply an on-curve point halfway between them.
func (p *clipPath) addContour(ps []truetype.Point, t glyphTransform) {
	if len(ps) == 0 {
		return
	}
	start := t.apply(ps[0])
	others := ps[1:]
	if !onCurve(ps[0]) {
		last := ps[len(ps)-1]
		if onCurve(last) {
			start = t.apply(last)
			others = ps[:len(ps)-1]
		} else {
			start = mid(start, t.apply(last))
			others = ps
		}
	}

	p.moveTo(start)
	prev, prevOn := start, true
	for _, tp := range others {
		q := t.apply(tp)
		on := onCurve(tp)
		switch {
		case on && prevOn:
			p.lineTo(q)
		case on:
			p.quadTo(prev, q)
		case !prevOn:
			p.quadTo(prev, mid(prev, q))
		}
		prev, prevOn = q, on
	}
	if prevOn {
		p.lineTo(start)
	} else {
		p.quadTo(prev, start)
	}
	p.close()
}
