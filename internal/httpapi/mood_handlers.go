package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/lukasbauer/echojournal/internal/mood"
)

type renderRequest struct {
	Moods     []mood.Mood `json:"moods"`
	Threshold float64     `json:"threshold,omitempty"`
	TopK      int         `json:"top_k,omitempty"`
	Direction string      `json:"direction,omitempty"`
}

// handleRender blends and renders a ranked mood list. Fields left out of the
// request fall back to the server's defaults.
func (r *Router) handleRender(w http.ResponseWriter, req *http.Request) {
	var body renderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 64<<10)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	opts := r.cfg.Render
	if body.Threshold > 0 {
		opts.DominanceThreshold = body.Threshold
	}
	if body.TopK > 0 {
		opts.TopK = body.TopK
	}
	if body.Direction != "" {
		opts.Direction = body.Direction
	}

	writeJSON(w, http.StatusOK, mood.Render(body.Moods, opts))
}

func (r *Router) handlePalette(w http.ResponseWriter, _ *http.Request) {
	swatches, fallback := mood.Palette()
	writeJSON(w, http.StatusOK, map[string]any{
		"labels":   swatches,
		"fallback": fallback,
	})
}
