package domain

import "github.com/google/uuid"

// DiscoveredConnection is a relation the reasoner perceived between the
// belief under revision and another active belief. Strength is clamped to
// [0,1] and the relation validated before it reaches a store.
type DiscoveredConnection struct {
	BeliefID  uuid.UUID    `json:"belief_id"`
	Content   string       `json:"content"`
	Relation  RelationType `json:"relation"`
	Strength  float64      `json:"strength"`
	Reasoning string       `json:"reasoning"`
}

// CascadeUpdate is a reconstruction-time request to pressure a connected
// belief. The reasoner references beliefs by text, not id.
type CascadeUpdate struct {
	Belief          string  `json:"belief"`
	SuggestedChange string  `json:"suggested_change"`
	TensionDelta    float64 `json:"new_tension_delta"`
}

// ProposedConnection is a new inter-belief edge the reconstruction surfaced.
type ProposedConnection struct {
	FromBelief string `json:"from_belief"`
	ToBelief   string `json:"to_belief"`
	Relation   string `json:"relation"`
	Reasoning  string `json:"reasoning"`
}

// Reconstruction is the structured result of a revision call.
type Reconstruction struct {
	Analysis          string               `json:"analysis"`
	RevisedBelief     string               `json:"revised_belief"`
	Confidence        float64              `json:"confidence"`
	CascadeUpdates    []CascadeUpdate      `json:"cascade_updates"`
	BehavioralChanges []string             `json:"behavioral_changes"`
	NewConnections    []ProposedConnection `json:"new_connections"`
	Reasoning         string               `json:"reasoning"`
}

// ReconstructionInput carries everything the reasoner needs to rebuild a
// belief: the belief itself, its contradiction history, and descriptions of
// stored plus freshly discovered neighbors.
type ReconstructionInput struct {
	Belief                Belief
	Contradictions        []string
	StoredConnections     []string
	DiscoveredConnections []string
}
