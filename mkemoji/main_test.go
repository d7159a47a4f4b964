package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rook-computer/emogen/internal/colorcode"
	"github.com/rook-computer/emogen/internal/moji"
	"github.com/rook-computer/emogen/internal/render"
	"golang.org/x/image/font/gofont/goregular"
)

func TestRunWritesPNGToStdout(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-text", "A%0AB", "-fg", "000f", "-bg", "0000", "-size", "64"}, &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v (stderr %q)", err, errOut.String())
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 64, 64) {
		t.Errorf("bounds = %v, want 64x64", got)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %d, want transparent background", a)
	}
}

func TestRunBrandColorsWhenAbsent(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-text", "A", "-size", "64"}, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatal(err)
	}
	if got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); got.A != 0 {
		t.Errorf("corner = %v, want brand transparent background", got)
	}
	found := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)) == colorcode.BrandForeground {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no pixel in the brand foreground color")
	}
}

func TestRunWritesFile(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "font.ttf")
	if err := os.WriteFile(fontPath, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.ico")

	args := []string{"-text", "OK", "-format", "ico", "-font", filepath.Join(dir, "*.ttf"), "-out", outPath}
	if err := run(context.Background(), args, &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0, 0, 1, 0, 1, 0}) {
		t.Errorf("output is not an ICO: % x", data[:6])
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"bad format", []string{"-text", "A", "-format", "bmp"}, render.ErrUnknownFormat},
		{"oversized icon", []string{"-text", "A", "-format", "ico", "-size", "512"}, render.ErrIconTooLarge},
		{"bad size", []string{"-text", "A", "-size", "0"}, nil},
		{"bad fallback", []string{"-text", "A", "-fallback", "rainbow"}, nil},
		{"bad escape", []string{"-text", "%zz"}, nil},
		{"missing font", []string{"-text", "A", "-font", filepath.Join(t.TempDir(), "none.ttf")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), tt.args, &out, &bytes.Buffer{})
			if err == nil {
				t.Fatal("want error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
			if out.Len() != 0 {
				t.Errorf("wrote %d bytes on error", out.Len())
			}
		})
	}
}

func TestRunDecodeErrorType(t *testing.T) {
	err := run(context.Background(), []string{"-text", "%zz"}, &bytes.Buffer{}, &bytes.Buffer{})
	var de *moji.DecodeError
	if !errors.As(err, &de) {
		t.Errorf("err = %v, want *moji.DecodeError", err)
	}
}

func TestOptionalDistinguishesEmptyFromAbsent(t *testing.T) {
	o, err := parseFlags([]string{"-fg", ""}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if p := o.optional("fg", o.fg); p == nil || *p != "" {
		t.Errorf("optional(fg) = %v, want pointer to empty string", p)
	}
	if p := o.optional("bg", o.bg); p != nil {
		t.Errorf("optional(bg) = %q, want nil", *p)
	}
}
