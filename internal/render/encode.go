package render

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// Format is an output image container.
type Format int

const (
	PNG Format = iota
	JPEG
	GIF
	ICO
)

var formatInfo = [...]struct {
	name, mime, ext string
}{
	PNG:  {"png", "image/png", "png"},
	JPEG: {"jpeg", "image/jpeg", "jpg"},
	GIF:  {"gif", "image/gif", "gif"},
	ICO:  {"ico", "image/x-icon", "ico"},
}

// JPEGQuality is the fixed JPEG encoder quality.
const JPEGQuality = 100

var (
	// ErrUnknownFormat is returned by ParseFormat for unsupported extensions.
	ErrUnknownFormat = errors.New("render: unknown image format")
	// ErrIconTooLarge is returned when an ICO entry would exceed 256×256.
	ErrIconTooLarge = errors.New("render: icon dimensions must be between 1 and 256")
)

func (f Format) valid() bool { return f >= PNG && f <= ICO }

func (f Format) String() string {
	if !f.valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatInfo[f].name
}

// MIME returns the Content-Type for f.
func (f Format) MIME() string {
	if !f.valid() {
		return "application/octet-stream"
	}
	return formatInfo[f].mime
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	if !f.valid() {
		return ""
	}
	return formatInfo[f].ext
}

// ParseFormat maps a file extension to a Format.
func ParseFormat(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "ico":
		return ICO, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

// Encode writes img to w in format f. Output for the same image and format
// is always byte-identical.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		// JPEG has no alpha channel; transparent pixels come out black.
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case GIF:
		err = gif.Encode(w, img, &gif.Options{NumColors: 256})
	case ICO:
		err = encodeICO(w, img)
	default:
		err = ErrUnknownFormat
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// EncodeBytes is Encode into a new buffer.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const (
	icoHeaderLen = 6
	icoEntryLen  = 16
)

// encodeICO writes a single-image icon whose entry is a 32-bit PNG.
func encodeICO(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 || b.Dx() > 256 || b.Dy() > 256 {
		return ErrIconTooLarge
	}
	var payload bytes.Buffer
	if err := png.Encode(&payload, img); err != nil {
		return err
	}

	hdr := make([]byte, icoHeaderLen+icoEntryLen)
	binary.LittleEndian.PutUint16(hdr[2:], 1) // resource type: icon
	binary.LittleEndian.PutUint16(hdr[4:], 1) // image count
	// A dimension of 256 is stored as 0.
	hdr[6] = uint8(b.Dx())
	hdr[7] = uint8(b.Dy())
	binary.LittleEndian.PutUint16(hdr[10:], 1)  // color planes
	binary.LittleEndian.PutUint16(hdr[12:], 32) // bits per pixel
	binary.LittleEndian.PutUint32(hdr[14:], uint32(payload.Len()))
	binary.LittleEndian.PutUint32(hdr[18:], icoHeaderLen+icoEntryLen)

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	_, err := payload.WriteTo(w)
	return err
}
