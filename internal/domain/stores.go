package domain

import (
	"context"

	"github.com/google/uuid"
)

// ApplyRevisionParams is the atomic supersession batch: create the successor,
// deactivate the predecessor, relink neighbors, write the audit record.
// All four succeed or none do.
type ApplyRevisionParams struct {
	Old             Belief
	NewContent      string
	NewConfidence   float64
	NeighborIDs     []uuid.UUID
	EvidenceSummary string
	Reasoning       string
}

// ApplyRevisionResult reports the entities the transaction produced.
type ApplyRevisionResult struct {
	NewBelief  Belief
	RevisionID uuid.UUID
}

type BeliefStore interface {
	Create(ctx context.Context, b *Belief) error
	GetByID(ctx context.Context, id uuid.UUID) (*Belief, error)
	ListActive(ctx context.Context, domain string) ([]Belief, error)
	ListAboveTension(ctx context.Context, threshold float64) ([]Belief, error)
	// Reinforce applies one diminishing-returns confidence step to an active
	// belief. Returns ErrNotFound for missing or inactive beliefs.
	Reinforce(ctx context.Context, id uuid.UUID, increment float64) (*Belief, error)
	// AddTension applies one linear tension step to an active belief as a
	// single atomic statement, returning the updated row.
	AddTension(ctx context.Context, id uuid.UUID, delta float64) (*Belief, error)
	// Supersede deactivates old and points it at new. Fails if old is
	// already inactive.
	Supersede(ctx context.Context, oldID, newID uuid.UUID) error
	// TensionProfile returns every active belief with its edge degree, the
	// input to the dissatisfaction aggregation.
	TensionProfile(ctx context.Context) ([]TensionWeight, error)
	Count(ctx context.Context) (int, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]Belief, error)
}

type ConnectionStore interface {
	// Upsert writes the edge for the ordered pair (a, b), overwriting
	// relation and strength if the pair already exists. Strength is clamped
	// to [0,1] before the write.
	Upsert(ctx context.Context, c *Connection) error
	// Connected returns active beliefs reachable within hops edges of id,
	// treating edges as undirected, excluding id itself. Bounded frontier
	// expansion, not transitive closure.
	Connected(ctx context.Context, id uuid.UUID, hops int) ([]Belief, error)
}

type ContradictionStore interface {
	Log(ctx context.Context, beliefID uuid.UUID, interactionID *uuid.UUID, evidence string, tensionDelta float64) error
	Recent(ctx context.Context, beliefID uuid.UUID, limit int) ([]ContradictionEntry, error)
}

type RevisionStore interface {
	// Apply runs the supersession sequence in one transaction.
	Apply(ctx context.Context, p ApplyRevisionParams) (*ApplyRevisionResult, error)
	SetCascaded(ctx context.Context, revisionID uuid.UUID, beliefIDs []uuid.UUID) error
	Recent(ctx context.Context, limit int) ([]Revision, error)
}

type InteractionStore interface {
	Create(ctx context.Context, i *Interaction) error
	MarkRevisionTriggered(ctx context.Context, id uuid.UUID) error
}

// ReasonerClient is the external generative-reasoning collaborator. Every
// structured method is best-effort: transport or parse failures surface as
// errors for the caller to degrade on, never as partial results.
type ReasonerClient interface {
	// Respond generates the assistant reply under a belief-aware system prompt.
	Respond(ctx context.Context, system, userMessage string) (string, error)
	// ExtractEvidence maps an interaction to claims matched against beliefs.
	ExtractEvidence(ctx context.Context, userMessage, assistantResponse string, beliefs []Belief) ([]Evidence, error)
	// DiscoverConnections asks for relations between the triggered belief and
	// the other active beliefs.
	DiscoverConnections(ctx context.Context, triggered Belief, others []Belief) ([]DiscoveredConnection, error)
	// Reconstruct performs the deep revision call, typically on a
	// higher-capability model.
	Reconstruct(ctx context.Context, input ReconstructionInput) (*Reconstruction, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
