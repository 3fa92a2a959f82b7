package handlers

import (
	"net/http"

	"github.com/juan-cardona/anxious-intelligence/internal/service"
)

type DissatisfactionHandler struct {
	svc *service.DissatisfactionService
}

func NewDissatisfactionHandler(svc *service.DissatisfactionService) *DissatisfactionHandler {
	return &DissatisfactionHandler{svc: svc}
}

// Get returns the global dissatisfaction value, its label, and the
// per-belief breakdown.
func (h *DissatisfactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	value, err := h.svc.Global(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute dissatisfaction")
		return
	}

	breakdown, err := h.svc.Breakdown(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute breakdown")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dissatisfaction": value,
		"state":           service.DescribeState(value),
		"breakdown":       breakdown,
	})
}
