package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"github.com/juan-cardona/anxious-intelligence/internal/service"
	"github.com/juan-cardona/anxious-intelligence/internal/store"
)

type RevisionHandler struct {
	revisions domain.RevisionStore
	beliefs   domain.BeliefStore
	engine    *service.RevisionEngine
}

func NewRevisionHandler(rs domain.RevisionStore, bs domain.BeliefStore, engine *service.RevisionEngine) *RevisionHandler {
	return &RevisionHandler{revisions: rs, beliefs: bs, engine: engine}
}

// Recent returns the latest revision audit records with old/new content.
func (h *RevisionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	revisions, err := h.revisions.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch revisions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revisions": revisions, "count": len(revisions)})
}

type triggerRequest struct {
	BeliefID string `json:"belief_id"`
}

// Trigger forces a revision pass on one belief, provided its persisted
// tension actually sits at or above the threshold.
func (h *RevisionHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := uuid.Parse(req.BeliefID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief_id")
		return
	}

	belief, err := h.beliefs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "belief not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch belief")
		return
	}

	results := h.engine.ReviseAllTriggered(r.Context(), []domain.Belief{*belief})
	if len(results) == 0 {
		writeError(w, http.StatusConflict, "belief is not above the revision threshold")
		return
	}

	writeJSON(w, http.StatusOK, results[0])
}
