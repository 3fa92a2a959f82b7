package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/service"
	"github.com/juan-cardona/anxious-intelligence/internal/store"
)

type BeliefHandler struct {
	svc *service.BeliefService
}

func NewBeliefHandler(svc *service.BeliefService) *BeliefHandler {
	return &BeliefHandler{svc: svc}
}

type createBeliefRequest struct {
	Content    string  `json:"content"`
	Domain     string  `json:"domain,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Importance float64 `json:"importance,omitempty"`
}

func (h *BeliefHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBeliefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	belief, err := h.svc.Create(r.Context(), req.Content, req.Domain, req.Confidence, req.Importance)
	if err != nil {
		if errors.Is(err, service.ErrBeliefContentEmpty) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create belief")
		return
	}

	writeJSON(w, http.StatusCreated, belief)
}

func (h *BeliefHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	belief, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "belief not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch belief")
		return
	}

	writeJSON(w, http.StatusOK, belief)
}

func (h *BeliefHandler) List(w http.ResponseWriter, r *http.Request) {
	beliefs, err := h.svc.ListActive(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list beliefs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beliefs": beliefs, "count": len(beliefs)})
}

type connectRequest struct {
	To        string  `json:"to"`
	Relation  string  `json:"relation"`
	Strength  float64 `json:"strength"`
	Reasoning string  `json:"reasoning,omitempty"`
}

func (h *BeliefHandler) Connect(w http.ResponseWriter, r *http.Request) {
	from, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to, err := uuid.Parse(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid target belief id")
		return
	}

	if err := h.svc.Connect(r.Context(), from, to, req.Relation, req.Strength, req.Reasoning); err != nil {
		if errors.Is(err, service.ErrInvalidRelation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to connect beliefs")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "connected"})
}

func (h *BeliefHandler) Connected(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	hops := 1
	if raw := r.URL.Query().Get("hops"); raw != "" {
		if hops, err = strconv.Atoi(raw); err != nil || hops < 1 {
			writeError(w, http.StatusBadRequest, "invalid hops")
			return
		}
	}

	beliefs, err := h.svc.Connected(r.Context(), id, hops)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch connected beliefs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beliefs": beliefs, "count": len(beliefs)})
}

type similarRequest struct {
	Query     string  `json:"query"`
	Threshold float64 `json:"threshold,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

func (h *BeliefHandler) Similar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Threshold == 0 {
		req.Threshold = 0.75
	}

	beliefs, err := h.svc.Similar(r.Context(), req.Query, req.Threshold, req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrQueryEmpty) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to search beliefs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beliefs": beliefs, "count": len(beliefs)})
}
