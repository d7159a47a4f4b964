// Package moji turns the raw text segment of a request path into the lines
// handed to the renderer.
package moji

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DecodeError reports malformed percent-encoding in a moji.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode moji %q: %v", e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var newlineEscapes = strings.NewReplacer("%0a", "\n", "%0A", "\n")

// Decoder decodes moji path segments.
type Decoder struct {
	// NFC composes combining sequences after decoding, so a decomposed
	// "e" + U+0301 is drawn with the font's precomposed "é" glyph.
	NFC bool
}

// Decode percent-decodes raw. Encoded line feeds become real newlines and a
// plus sign is kept as is. Other bytes pass through unchanged unless NFC is
// set.
func (d Decoder) Decode(raw string) (string, error) {
	text, err := url.PathUnescape(newlineEscapes.Replace(raw))
	if err != nil {
		return "", &DecodeError{Raw: raw, Err: err}
	}
	if d.NFC {
		text = norm.NFC.String(text)
	}
	return text, nil
}

// Decode is Decoder{}.Decode: the decoded bytes are returned unchanged.
func Decode(raw string) (string, error) {
	return Decoder{}.Decode(raw)
}

// Lines splits text on newlines. It always returns at least one line.
func Lines(text string) []string {
	return strings.Split(text, "\n")
}

// Filename builds the download name for text with the given extension.
func Filename(text, ext string) string {
	name := strings.NewReplacer("\r", "", "\n", "").Replace(text)
	if name == "" {
		name = "emoji"
	}
	return name + "." + ext
}
