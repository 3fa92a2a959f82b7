package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"go.uber.org/zap"
)

// DissatisfactionService aggregates per-belief tension into the global
// dissatisfaction scalar. Tension on an important, well-connected belief
// weighs more than tension on a peripheral one.
type DissatisfactionService struct {
	beliefs domain.BeliefStore
	logger  *zap.Logger
}

func NewDissatisfactionService(bs domain.BeliefStore, logger *zap.Logger) *DissatisfactionService {
	return &DissatisfactionService{beliefs: bs, logger: logger}
}

// Contribution is one belief's unnormalized term in the aggregation,
// for observability.
type Contribution struct {
	BeliefID     uuid.UUID `json:"belief_id"`
	Content      string    `json:"content"`
	Tension      float64   `json:"tension"`
	Importance   float64   `json:"importance"`
	Connections  int       `json:"connections"`
	Contribution float64   `json:"contribution"`
}

// Global returns the weighted-average dissatisfaction over all active beliefs.
func (s *DissatisfactionService) Global(ctx context.Context) (float64, error) {
	profile, err := s.beliefs.TensionProfile(ctx)
	if err != nil {
		return 0, err
	}
	return computeGlobal(profile), nil
}

// Breakdown returns per-belief contribution terms, highest first.
func (s *DissatisfactionService) Breakdown(ctx context.Context) ([]Contribution, error) {
	profile, err := s.beliefs.TensionProfile(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Contribution, 0, len(profile))
	for _, w := range profile {
		out = append(out, Contribution{
			BeliefID:     w.BeliefID,
			Content:      w.Content,
			Tension:      w.Tension,
			Importance:   w.Importance,
			Connections:  w.Connections,
			Contribution: w.Tension * w.Importance * float64(w.Connections+1),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Contribution > out[j].Contribution })
	return out, nil
}

// computeGlobal is the pure aggregation: weight each belief by
// importance x (degree+1), then take the tension-weighted average.
// Zero when no active beliefs exist.
func computeGlobal(profile []domain.TensionWeight) float64 {
	if len(profile) == 0 {
		return 0
	}

	var weighted, total float64
	for _, w := range profile {
		weight := w.Importance * float64(w.Connections+1)
		weighted += w.Tension * weight
		total += weight
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// DescribeState maps a dissatisfaction value to a qualitative label.
// Monotonic step function, no hysteresis.
func DescribeState(value float64) string {
	switch {
	case value < 0.1:
		return "Calm"
	case value < 0.3:
		return "Settled"
	case value < 0.5:
		return "Uneasy"
	case value < 0.7:
		return "Anxious"
	case value < 0.9:
		return "Critical"
	default:
		return "Crisis"
	}
}
