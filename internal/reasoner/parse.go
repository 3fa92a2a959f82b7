package reasoner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type rawEvidence struct {
	Claim       string  `json:"claim"`
	Type        string  `json:"type"`
	BeliefIndex any     `json:"belief_index"`
	Stance      string  `json:"stance"`
	Strength    float64 `json:"strength"`
}

// parseEvidence decodes an evidence-extraction response and resolves belief
// indexes against the beliefs the prompt listed. Items with an out-of-range
// index (or "novel") carry no belief id.
func parseEvidence(raw string, beliefs []domain.Belief) ([]domain.Evidence, error) {
	var items []rawEvidence
	if err := json.Unmarshal([]byte(stripFences(raw)), &items); err != nil {
		return nil, fmt.Errorf("parse evidence response: %w", err)
	}

	evidence := make([]domain.Evidence, 0, len(items))
	for _, item := range items {
		stance := item.Stance
		if !domain.ValidStance(stance) {
			stance = string(domain.StanceNeutral)
		}

		ev := domain.Evidence{
			Claim:    item.Claim,
			Type:     item.Type,
			Stance:   domain.Stance(stance),
			Strength: domain.Clamp01(item.Strength),
		}

		// belief_index arrives as a JSON number or the string "novel".
		if idx, ok := item.BeliefIndex.(float64); ok {
			i := int(idx)
			if i >= 0 && i < len(beliefs) {
				id := beliefs[i].ID
				ev.BeliefID = &id
			}
		}

		evidence = append(evidence, ev)
	}
	return evidence, nil
}

type rawDiscovery struct {
	BeliefIndex int     `json:"belief_index"`
	Relation    string  `json:"relation"`
	Strength    float64 `json:"strength"`
	Reasoning   string  `json:"reasoning"`
}

// parseDiscoveries decodes a connection-discovery response. Indexes resolve
// against others; invalid relations fall back to supports and strengths are
// clamped before anything reaches a store.
func parseDiscoveries(raw string, others []domain.Belief) ([]domain.DiscoveredConnection, error) {
	var items []rawDiscovery
	if err := json.Unmarshal([]byte(stripFences(raw)), &items); err != nil {
		return nil, fmt.Errorf("parse discovery response: %w", err)
	}

	discovered := make([]domain.DiscoveredConnection, 0, len(items))
	for _, item := range items {
		if item.BeliefIndex < 0 || item.BeliefIndex >= len(others) {
			continue
		}

		relation := item.Relation
		if !domain.ValidRelationType(relation) {
			relation = string(domain.RelationSupports)
		}

		target := others[item.BeliefIndex]
		discovered = append(discovered, domain.DiscoveredConnection{
			BeliefID:  target.ID,
			Content:   target.Content,
			Relation:  domain.RelationType(relation),
			Strength:  domain.Clamp01(item.Strength),
			Reasoning: item.Reasoning,
		})
	}
	return discovered, nil
}

func parseReconstruction(raw string) (*domain.Reconstruction, error) {
	var result domain.Reconstruction
	if err := json.Unmarshal([]byte(stripFences(raw)), &result); err != nil {
		return nil, fmt.Errorf("parse reconstruction response: %w", err)
	}
	if result.RevisedBelief == "" {
		return nil, fmt.Errorf("reconstruction response missing revised_belief")
	}
	result.Confidence = domain.Clamp01(result.Confidence)
	return &result, nil
}
