package web

import (
	"encoding/json"
	"net/http"
	"time"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type fontStatus struct {
	Source    string `json:"source"`
	LastError string `json:"lastError,omitempty"`
}

type canvasStatus struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type renderStatus struct {
	Rendered int64            `json:"rendered"`
	Failed   int64            `json:"failed"`
	ByFormat map[string]int64 `json:"byFormat"`
}

type statusResponse struct {
	Phase         string       `json:"phase"`
	UptimeSeconds int64        `json:"uptimeSeconds"`
	Font          fontStatus   `json:"font"`
	Canvas        canvasStatus `json:"canvas"`
	Renders       renderStatus `json:"renders"`
}

func apiV1Router(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, deps) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
	})
	return mux
}

func handleStatus(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	snap := deps.Store.Snapshot()
	source := snap.Font.Source
	if source == "" {
		source = deps.Fonts.Name()
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Phase:         snap.Phase.String(),
		UptimeSeconds: int64(time.Since(snap.StartedAt) / time.Second),
		Font:          fontStatus{Source: source, LastError: snap.Font.LastErr},
		Canvas:        canvasStatus{Width: deps.Canvas.X, Height: deps.Canvas.Y},
		Renders: renderStatus{
			Rendered: snap.Renders.Rendered,
			Failed:   snap.Renders.Failed,
			ByFormat: snap.Renders.ByFormat,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
