package web

import (
	"bytes"
	"html/template"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rook-computer/emogen/internal/assets"
	"github.com/rook-computer/emogen/internal/moji"
	"github.com/rook-computer/emogen/internal/render"
	"github.com/rook-computer/emogen/internal/state"
)

const imageCacheControl = "public, max-age=86400"

// routeFormats maps the last path segment of an image route, without any
// "e." prefix, to its format.
var routeFormats = map[string]render.Format{
	"png": render.PNG,
	"jpg": render.JPEG,
	"gif": render.GIF,
	"ico": render.ICO,
}

type pageData struct {
	Domain      string
	Moji        string
	MojiDecoded string
	Query       template.URL
	ServiceName string
	BaseDomain  string
}

func emojiRouter(deps EmojiDeps) http.Handler {
	deps = deps.withDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}

		// The escaped path keeps "%2F" and "%0a" inside the moji segment.
		rel := strings.TrimPrefix(r.URL.EscapedPath(), "/")
		if rel == "" {
			handlePage(w, r, deps, "")
			return
		}
		parts := strings.Split(rel, "/")
		switch len(parts) {
		case 1:
			handlePage(w, r, deps, parts[0])
			return
		case 2:
			if parts[1] == "qr.png" {
				handleQRCode(w, r, deps, parts[0])
				return
			}
			if f, ok := routeFormats[strings.TrimPrefix(parts[1], "e.")]; ok {
				handleImage(w, r, deps, parts[0], f)
				return
			}
		}
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
	})
}

func handlePage(w http.ResponseWriter, r *http.Request, deps EmojiDeps, raw string) {
	data := pageData{
		Domain:      r.Host,
		Moji:        raw,
		Query:       template.URL(r.URL.RawQuery),
		ServiceName: deps.ServiceName,
		BaseDomain:  deps.BaseDomain,
	}
	if raw == "" {
		data.Moji = url.PathEscape(deps.ServiceName)
		data.MojiDecoded = deps.ServiceName
	} else {
		text, err := deps.Moji.Decode(raw)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "decode_failed", err.Error())
			return
		}
		data.MojiDecoded = text
	}

	var buf bytes.Buffer
	if err := assets.IndexTemplate.Execute(&buf, data); err != nil {
		deps.Log.Errorf("web", "render page: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "template_failed", "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func handleImage(w http.ResponseWriter, r *http.Request, deps EmojiDeps, raw string, f render.Format) {
	text, err := deps.Moji.Decode(raw)
	if err != nil {
		deps.Store.RecordRender(f.String(), false)
		writeAPIError(w, http.StatusBadRequest, "decode_failed", err.Error())
		return
	}

	query := r.URL.Query()
	fg, bg := deps.Colors.Resolve(r.Host, deps.BaseDomain, queryValue(query, "fg"), queryValue(query, "bg"))

	font, err := deps.Fonts.Font(r.Context())
	if err != nil {
		deps.Store.RecordRender(f.String(), false)
		deps.Store.UpdateFont(state.FontInfo{Source: deps.Fonts.Name(), LastErr: err.Error()})
		deps.Log.Errorf("web", "font for %q: %v", text, err)
		writeAPIError(w, http.StatusInternalServerError, "font_unavailable", err.Error())
		return
	}

	img := deps.Renderer.Render(moji.Lines(text), fg, bg, deps.Canvas.X, deps.Canvas.Y, font)
	data, err := render.EncodeBytes(img, f)
	if err != nil {
		deps.Store.RecordRender(f.String(), false)
		deps.Log.Errorf("web", "%v", err)
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	deps.Store.RecordRender(f.String(), true)

	if _, ok := query["download"]; ok {
		setDownloadHeader(w, moji.Filename(text, f.Ext()))
	}
	writeImage(w, f.MIME(), data)
}

func handleQRCode(w http.ResponseWriter, r *http.Request, deps EmojiDeps, raw string) {
	if _, err := deps.Moji.Decode(raw); err != nil {
		writeAPIError(w, http.StatusBadRequest, "decode_failed", err.Error())
		return
	}

	target := url.URL{
		Scheme:   requestScheme(r),
		Host:     r.Host,
		RawPath:  "/" + raw + "/e.png",
		RawQuery: r.URL.RawQuery,
	}
	target.Path, _ = url.PathUnescape(target.RawPath)

	img, err := render.ShareQRCode(target.String(), deps.Canvas.X)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	data, err := render.EncodeBytes(img, render.PNG)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	writeImage(w, render.PNG.MIME(), data)
}

func writeImage(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", imageCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func setDownloadHeader(w http.ResponseWriter, filename string) {
	if cd := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	}
}

// queryValue returns the first value of key, or nil when key is absent.
func queryValue(q url.Values, key string) *string {
	vs, ok := q[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		return proto
	}
	return "http"
}
