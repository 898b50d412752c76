package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lukasbauer/echojournal/internal/store"
)

func (r *Router) handleListEntries(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())

	limit := 0
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := r.entries.ListEntries(req.Context(), user.Owner, limit)
	if err != nil {
		r.logger.WithError(err).Error("list entries failed")
		captureError(req, err, "list entries")
		writeError(w, http.StatusInternalServerError, "failed to list entries")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (r *Router) handleDeleteEntry(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	id := req.PathValue("id")

	err := r.entries.DeleteEntry(req.Context(), user.Owner, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
	case err != nil:
		r.logger.WithError(err).WithField("entry_id", id).Error("delete entry failed")
		captureError(req, err, "delete entry")
		writeError(w, http.StatusInternalServerError, "failed to delete entry")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
