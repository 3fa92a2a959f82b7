package domain

import (
	"time"

	"github.com/google/uuid"
)

// Belief is a persisted self-model statement. Tension accumulates from
// contradicting evidence; confidence grows from reinforcing evidence.
// Importance is fixed at creation and never moved by the dynamics.
type Belief struct {
	ID                 uuid.UUID  `json:"id"`
	Content            string     `json:"content"`
	Domain             string     `json:"domain"`
	Confidence         float64    `json:"confidence"`
	Tension            float64    `json:"tension"`
	Importance         float64    `json:"importance"`
	ReinforcementCount int        `json:"reinforcement_count"`
	IsActive           bool       `json:"is_active"`
	SupersededBy       *uuid.UUID `json:"superseded_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	LastReinforced     *time.Time `json:"last_reinforced,omitempty"`
	LastChallenged     *time.Time `json:"last_challenged,omitempty"`
	RevisedAt          *time.Time `json:"revised_at,omitempty"`
}

// RelationType classifies a connection between two beliefs.
type RelationType string

const (
	RelationSupports      RelationType = "supports"
	RelationContradicts   RelationType = "contradicts"
	RelationDependsOn     RelationType = "depends_on"
	RelationGeneralizes   RelationType = "generalizes"
	RelationTensionShares RelationType = "tension_shares"
)

// ValidRelationType reports whether s is in the fixed relation vocabulary.
func ValidRelationType(s string) bool {
	switch RelationType(s) {
	case RelationSupports, RelationContradicts, RelationDependsOn,
		RelationGeneralizes, RelationTensionShares:
		return true
	}
	return false
}

// Connection method values recorded as provenance.
const (
	ConnectionMethodSeed      = "seed"
	ConnectionMethodManual    = "manual"
	ConnectionMethodDiscovery = "reasoner_discovery"
	ConnectionMethodRelink    = "revision_relink"
)

// Connection is a directed, typed, weighted edge between two beliefs.
// The ordered pair (BeliefA, BeliefB) is the unique key; re-connecting the
// same pair overwrites relation and strength.
type Connection struct {
	BeliefA   uuid.UUID    `json:"belief_a"`
	BeliefB   uuid.UUID    `json:"belief_b"`
	Relation  RelationType `json:"relation"`
	Strength  float64      `json:"strength"`
	Method    string       `json:"method,omitempty"`
	Reasoning string       `json:"reasoning,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ContradictionEntry is an append-only record of one piece of contradicting
// evidence applied to a belief. Never mutated after insert.
type ContradictionEntry struct {
	ID            uuid.UUID  `json:"id"`
	BeliefID      uuid.UUID  `json:"belief_id"`
	InteractionID *uuid.UUID `json:"interaction_id,omitempty"`
	Evidence      string     `json:"evidence"`
	TensionDelta  float64    `json:"tension_delta"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Revision is the append-only audit record of one completed supersession.
type Revision struct {
	ID              uuid.UUID   `json:"id"`
	OldBeliefID     uuid.UUID   `json:"old_belief_id"`
	NewBeliefID     uuid.UUID   `json:"new_belief_id"`
	TriggerTension  float64     `json:"trigger_tension"`
	EvidenceSummary string      `json:"evidence_summary"`
	CascadedBeliefs []uuid.UUID `json:"cascaded_beliefs"`
	Reasoning       string      `json:"reasoning"`
	CreatedAt       time.Time   `json:"created_at"`

	// Joined content, populated by listing queries.
	OldContent string `json:"old_content,omitempty"`
	NewContent string `json:"new_content,omitempty"`
}

// TensionWeight is one active belief's row in the dissatisfaction profile:
// its tension, importance, and the number of edges touching it.
type TensionWeight struct {
	BeliefID    uuid.UUID `json:"belief_id"`
	Content     string    `json:"content"`
	Domain      string    `json:"domain"`
	Tension     float64   `json:"tension"`
	Confidence  float64   `json:"confidence"`
	Importance  float64   `json:"importance"`
	Connections int       `json:"connections"`
}
