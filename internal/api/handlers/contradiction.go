package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

type ContradictionHandler struct {
	contradictions domain.ContradictionStore
}

func NewContradictionHandler(cs domain.ContradictionStore) *ContradictionHandler {
	return &ContradictionHandler{contradictions: cs}
}

// Recent returns the most recent contradiction-log entries for a belief.
func (h *ContradictionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	entries, err := h.contradictions.Recent(r.Context(), id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch contradictions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contradictions": entries, "count": len(entries)})
}
