package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stance of a piece of evidence relative to the belief it matched.
type Stance string

const (
	StanceReinforcing   Stance = "reinforcing"
	StanceContradicting Stance = "contradicting"
	StanceNeutral       Stance = "neutral"
)

// ValidStance reports whether s is a known stance.
func ValidStance(s string) bool {
	switch Stance(s) {
	case StanceReinforcing, StanceContradicting, StanceNeutral:
		return true
	}
	return false
}

// Evidence is one claim extracted from an interaction, matched (or not)
// against an active belief. Transient: consumed once by the tension
// accumulator, persisted only as part of the interaction record.
type Evidence struct {
	Claim    string     `json:"claim"`
	Type     string     `json:"type"` // factual, feedback, outcome
	Stance   Stance     `json:"stance"`
	BeliefID *uuid.UUID `json:"belief_id,omitempty"`
	Strength float64    `json:"strength"`
}

// Interaction is one user exchange processed through the pipeline.
type Interaction struct {
	ID                  uuid.UUID  `json:"id"`
	SessionID           string     `json:"session_id"`
	UserMessage         string     `json:"user_message"`
	AssistantResponse   string     `json:"assistant_response"`
	ExtractedClaims     []Evidence `json:"extracted_claims,omitempty"`
	DissatisfactionThen float64    `json:"dissatisfaction_at_time"`
	RevisionTriggered   bool       `json:"revision_triggered"`
	CreatedAt           time.Time  `json:"created_at"`
}
