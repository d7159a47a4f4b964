// Package colorcode decodes the short hex color codes accepted in request
// hosts and query strings, and resolves the foreground/background pair for an
// emoji request.
package colorcode

import (
	"image/color"
	"strconv"
)

var (
	// Transparent is fully transparent black, the result of an unusable code.
	Transparent = color.NRGBA{}

	// BrandForeground is the service green, code "0a0f".
	BrandForeground = color.NRGBA{R: 0x00, G: 0xa0, B: 0x00, A: 0xf0}
	// BrandBackground is code "0000".
	BrandBackground = Transparent
)

// Decode parses a color code.
//
// A 4-digit code expands each hex digit to a byte by multiplying it by 16, so
// "f" becomes 240 rather than 255. An 8-digit code is read as four hex bytes
// in R, G, B, A order. Any other length or a non-hex digit reports ok=false.
func Decode(code string) (c color.NRGBA, ok bool) {
	switch len(code) {
	case 4:
		return decodeShort(code)
	case 8:
		return decodeLong(code)
	default:
		return Transparent, false
	}
}

func decodeShort(code string) (color.NRGBA, bool) {
	var ch [4]uint8
	for i := range ch {
		v, ok := hexDigit(code[i])
		if !ok {
			return Transparent, false
		}
		ch[i] = v * 16
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

func decodeLong(code string) (color.NRGBA, bool) {
	var ch [4]uint8
	for i := range ch {
		v, err := strconv.ParseUint(code[2*i:2*i+2], 16, 8)
		if err != nil {
			return Transparent, false
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
