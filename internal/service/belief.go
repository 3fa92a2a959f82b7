package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrBeliefContentEmpty = errors.New("content is required")
	ErrInvalidRelation    = errors.New("invalid relation type")
	ErrQueryEmpty         = errors.New("query is required")
)

// BeliefService fronts the belief graph CRUD surface. Embeddings are
// best-effort decoration; the graph mechanics never depend on them.
type BeliefService struct {
	beliefs     domain.BeliefStore
	connections domain.ConnectionStore
	embedder    domain.EmbeddingClient
	logger      *zap.Logger
}

func NewBeliefService(bs domain.BeliefStore, cs domain.ConnectionStore, ec domain.EmbeddingClient, logger *zap.Logger) *BeliefService {
	return &BeliefService{
		beliefs:     bs,
		connections: cs,
		embedder:    ec,
		logger:      logger,
	}
}

func (s *BeliefService) Create(ctx context.Context, content, beliefDomain string, confidence, importance float64) (*domain.Belief, error) {
	if content == "" {
		return nil, ErrBeliefContentEmpty
	}

	b := &domain.Belief{
		Content:    content,
		Domain:     beliefDomain,
		Confidence: confidence,
		Importance: importance,
	}
	if err := s.beliefs.Create(ctx, b); err != nil {
		return nil, err
	}

	if s.embedder != nil {
		if vec, err := s.embedder.Embed(ctx, content); err != nil {
			s.logger.Warn("belief embedding failed", zap.String("belief_id", b.ID.String()), zap.Error(err))
		} else if err := s.beliefs.UpdateEmbedding(ctx, b.ID, vec); err != nil {
			s.logger.Warn("belief embedding not stored", zap.String("belief_id", b.ID.String()), zap.Error(err))
		}
	}

	return b, nil
}

func (s *BeliefService) Get(ctx context.Context, id uuid.UUID) (*domain.Belief, error) {
	return s.beliefs.GetByID(ctx, id)
}

func (s *BeliefService) ListActive(ctx context.Context, beliefDomain string) ([]domain.Belief, error) {
	return s.beliefs.ListActive(ctx, beliefDomain)
}

func (s *BeliefService) Connect(ctx context.Context, a, b uuid.UUID, relation string, strength float64, reasoning string) error {
	if !domain.ValidRelationType(relation) {
		return ErrInvalidRelation
	}
	return s.connections.Upsert(ctx, &domain.Connection{
		BeliefA:   a,
		BeliefB:   b,
		Relation:  domain.RelationType(relation),
		Strength:  strength,
		Method:    domain.ConnectionMethodManual,
		Reasoning: reasoning,
	})
}

func (s *BeliefService) Connected(ctx context.Context, id uuid.UUID, hops int) ([]domain.Belief, error) {
	if hops < 1 {
		hops = 1
	}
	return s.connections.Connected(ctx, id, hops)
}

// Similar finds active beliefs whose embeddings are close to the query text.
// Requires an embedding provider; with the mock provider results are only
// self-consistent, not semantic.
func (s *BeliefService) Similar(ctx context.Context, query string, threshold float64, limit int) ([]domain.Belief, error) {
	if query == "" {
		return nil, ErrQueryEmpty
	}
	if limit <= 0 {
		limit = 10
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.beliefs.FindSimilar(ctx, vec, threshold, limit)
}
