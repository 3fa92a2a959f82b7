package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"github.com/juan-cardona/anxious-intelligence/internal/store"
	"go.uber.org/zap"
)

// TensionService applies extracted evidence to the belief graph.
// Reinforcing evidence nudges confidence up with diminishing returns;
// contradicting evidence adds tension linearly and is logged. Beliefs whose
// tension reaches the revision threshold come back as candidates.
type TensionService struct {
	beliefs        domain.BeliefStore
	contradictions domain.ContradictionStore
	logger         *zap.Logger

	confidenceIncrement float64
	tensionIncrement    float64
	revisionThreshold   float64
}

func NewTensionService(bs domain.BeliefStore, cs domain.ContradictionStore, confidenceIncrement, tensionIncrement, revisionThreshold float64, logger *zap.Logger) *TensionService {
	return &TensionService{
		beliefs:             bs,
		contradictions:      cs,
		logger:              logger,
		confidenceIncrement: confidenceIncrement,
		tensionIncrement:    tensionIncrement,
		revisionThreshold:   revisionThreshold,
	}
}

// Accumulate processes one batch of evidence and returns the beliefs now at
// or above the revision threshold. Items are processed independently; two
// items against the same belief both apply. A missing or already-superseded
// belief skips the item rather than failing the batch.
func (s *TensionService) Accumulate(ctx context.Context, evidence []domain.Evidence, interactionID *uuid.UUID) ([]domain.Belief, error) {
	candidates := make([]domain.Belief, 0)
	seen := make(map[uuid.UUID]bool)

	for _, ev := range evidence {
		if ev.BeliefID == nil || ev.Stance == domain.StanceNeutral {
			continue
		}

		switch ev.Stance {
		case domain.StanceReinforcing:
			if _, err := s.beliefs.Reinforce(ctx, *ev.BeliefID, s.confidenceIncrement); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					s.logger.Debug("reinforcement target missing or inactive", zap.String("belief_id", ev.BeliefID.String()))
					continue
				}
				return candidates, err
			}
			s.logger.Info("belief reinforced",
				zap.String("belief_id", ev.BeliefID.String()),
				zap.String("claim", ev.Claim))

		case domain.StanceContradicting:
			delta := s.tensionIncrement * ev.Strength
			updated, err := s.beliefs.AddTension(ctx, *ev.BeliefID, delta)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					s.logger.Debug("contradiction target missing or inactive", zap.String("belief_id", ev.BeliefID.String()))
					continue
				}
				return candidates, err
			}

			if err := s.contradictions.Log(ctx, *ev.BeliefID, interactionID, ev.Claim, delta); err != nil {
				s.logger.Warn("contradiction log write failed", zap.Error(err))
			}

			s.logger.Info("tension added",
				zap.String("belief_id", ev.BeliefID.String()),
				zap.Float64("delta", delta),
				zap.Float64("tension", updated.Tension))

			if updated.Tension >= s.revisionThreshold && !seen[updated.ID] {
				seen[updated.ID] = true
				candidates = append(candidates, *updated)
			}
		}
	}

	return candidates, nil
}
