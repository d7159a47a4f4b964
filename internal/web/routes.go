package web

import "net/http"

type APIV1Config struct {
	Deps APIV1Deps
}

// RegisterAPIV1 registers the public API routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, cfg APIV1Config) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(cfg.Deps)))
}

// RegisterEmoji serves the share pages and images at every other path.
func RegisterEmoji(mux *http.ServeMux, deps EmojiDeps) {
	mux.Handle("/", emojiRouter(deps))
}

// NewDefaultMux builds the standard mux used by the service:
// - /api/v1/* for the API
// - / for pages, images and QR codes
func NewDefaultMux(emoji EmojiDeps, api APIV1Config) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, api)
	RegisterEmoji(mux, emoji)
	return mux
}
