// Command mkemoji renders one emoji image without running the server.
//
//	mkemoji -text "A%0AB" -fg 000f -bg 0000 -format png -size 128 -out ab.png
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rook-computer/emogen/internal/atomicfile"
	"github.com/rook-computer/emogen/internal/colorcode"
	"github.com/rook-computer/emogen/internal/config"
	"github.com/rook-computer/emogen/internal/fontsource"
	"github.com/rook-computer/emogen/internal/moji"
	"github.com/rook-computer/emogen/internal/render"
)

type options struct {
	text     string
	fg       string
	bg       string
	format   string
	size     int
	font     string
	out      string
	fallback string
	seed     uint64
	fullText bool
	nfc      bool
	// set records which flags were given, so an empty -fg differs from none.
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("mkemoji", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.text, "text", "", "percent-encoded text; %0A separates lines")
	fs.StringVar(&o.fg, "fg", "", "foreground color code (4 or 8 hex digits)")
	fs.StringVar(&o.bg, "bg", "", "background color code (4 or 8 hex digits)")
	fs.StringVar(&o.format, "format", "png", "png, jpg, gif or ico")
	fs.IntVar(&o.size, "size", render.DefaultCanvasWidth, "canvas width and height in pixels")
	fs.StringVar(&o.font, "font", "", "font file or glob; empty uses the embedded font")
	fs.StringVar(&o.out, "out", "-", "output file; - writes to stdout")
	fs.StringVar(&o.fallback, "fallback", string(colorcode.PolicyBrand), "color fallback: brand or random")
	fs.Uint64Var(&o.seed, "seed", 0, "random fallback seed; 0 seeds from the clock")
	fs.BoolVar(&o.fullText, "full-text-pass", false, "draw the whole text once more over the full canvas")
	fs.BoolVar(&o.nfc, "nfc", false, "compose the decoded text to NFC before drawing")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if o.size < 1 || o.size > config.MaxCanvasSize {
		return o, fmt.Errorf("-size must be in 1..%d, got %d", config.MaxCanvasSize, o.size)
	}
	return o, nil
}

// optional returns the flag value, or nil when the flag was not given.
func (o options) optional(name, value string) *string {
	if !o.set[name] {
		return nil
	}
	return &value
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	format, err := render.ParseFormat(o.format)
	if err != nil {
		return err
	}
	policy, err := colorcode.ParsePolicy(o.fallback)
	if err != nil {
		return err
	}
	text, err := moji.Decoder{NFC: o.nfc}.Decode(o.text)
	if err != nil {
		return err
	}

	var fonts fontsource.Provider
	if o.font == "" {
		fonts, err = fontsource.NewEmbedded(nil)
	} else {
		fonts, err = fontsource.NewFile(o.font, false, nil)
	}
	if err != nil {
		return err
	}
	font, err := fonts.Font(ctx)
	if err != nil {
		return err
	}

	resolver := colorcode.NewResolver(policy, colorcode.NewRand(o.seed))
	fg, bg := resolver.Resolve("", "", o.optional("fg", o.fg), o.optional("bg", o.bg))

	img := render.GlyphFit{FullTextPass: o.fullText}.Render(moji.Lines(text), fg, bg, o.size, o.size, font)

	var buf bytes.Buffer
	if err := render.Encode(&buf, img, format); err != nil {
		return err
	}
	if o.out == "-" || o.out == "" {
		_, err = buf.WriteTo(stdout)
		return err
	}
	return atomicfile.Write(o.out, buf.Bytes(), 0o644)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "mkemoji:", err)
		os.Exit(1)
	}
}
