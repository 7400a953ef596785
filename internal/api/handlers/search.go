package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/luminacare/assistant/internal/search"
)

type SearchHandler struct {
	svc *search.Service
}

func NewSearchHandler(svc *search.Service) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Ask answers a question over the caller's documents.
func (h *SearchHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return
	}

	resp, err := h.svc.Search(r.Context(), req)
	if err != nil {
		// Internal detail stays in the logs; callers get a generic error.
		slog.Error("search request failed", "error", err)
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
