package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"github.com/juan-cardona/anxious-intelligence/internal/service"
)

type EvidenceHandler struct {
	orchestrator *service.Orchestrator
}

func NewEvidenceHandler(o *service.Orchestrator) *EvidenceHandler {
	return &EvidenceHandler{orchestrator: o}
}

type submitEvidenceRequest struct {
	Evidence []domain.Evidence `json:"evidence"`
}

// Submit applies pre-extracted evidence directly, without generating a
// response. Useful for backfills and testing belief dynamics in isolation.
func (h *EvidenceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitEvidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Evidence) == 0 {
		writeError(w, http.StatusBadRequest, "evidence is required")
		return
	}
	for _, ev := range req.Evidence {
		if ev.Stance != "" && !domain.ValidStance(string(ev.Stance)) {
			writeError(w, http.StatusBadRequest, "invalid stance: "+string(ev.Stance))
			return
		}
	}

	revisions, err := h.orchestrator.SubmitEvidence(r.Context(), req.Evidence)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to apply evidence")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"applied":   len(req.Evidence),
		"revisions": revisions,
	})
}
