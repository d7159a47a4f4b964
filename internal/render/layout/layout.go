package layout

import "image"

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// SplitHorizontal splits rect into top and bottom parts.
// topHeightPx is clamped to [0, rect.Dy()].
func SplitHorizontal(rect image.Rectangle, topHeightPx int) (top image.Rectangle, bottom image.Rectangle) {
	rect = Normalize(rect)
	height := rect.Dy()
	if topHeightPx < 0 {
		topHeightPx = 0
	}
	if topHeightPx > height {
		topHeightPx = height
	}
	top = image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+topHeightPx)
	bottom = image.Rect(rect.Min.X, rect.Min.Y+topHeightPx, rect.Max.X, rect.Max.Y)
	return top, bottom
}

// Rows splits rect into n stacked bands of rect.Dy()/n rows each, top to
// bottom. The rows left over by the integer division are not part of any
// band. n < 1 is treated as 1.
func Rows(rect image.Rectangle, n int) []image.Rectangle {
	if n < 1 {
		n = 1
	}
	rect = Normalize(rect)
	bandHeight := rect.Dy() / n
	rows := make([]image.Rectangle, n)
	rest := rect
	for i := range rows {
		rows[i], rest = SplitHorizontal(rest, bandHeight)
	}
	return rows
}
