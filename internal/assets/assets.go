package assets

import (
	_ "embed"
	"html/template"

	"golang.org/x/image/font/gofont/goregular"
)

//go:embed index.html.tmpl
var indexHTML string

// IndexTemplate renders the share page for one moji.
var IndexTemplate = template.Must(template.New("index").Parse(indexHTML))

// DefaultFont is the font used when no other source is configured. Go
// Regular covers Latin, Greek and Cyrillic only; deployments that serve CJK
// text configure a file or url font.
var DefaultFont = goregular.TTF

const DefaultFontName = "goregular.ttf"
