package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/juan-cardona/anxious-intelligence/internal/service"
)

type InteractionHandler struct {
	orchestrator *service.Orchestrator
}

func NewInteractionHandler(o *service.Orchestrator) *InteractionHandler {
	return &InteractionHandler{orchestrator: o}
}

type interactionRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// Create runs one message through the full pipeline. Revisions are
// synchronous; the response includes whatever they changed.
func (h *InteractionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	result, err := h.orchestrator.ProcessInteraction(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeError(w, http.StatusBadGateway, "interaction failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
