package reasoner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

func testBeliefs(n int) []domain.Belief {
	out := make([]domain.Belief, n)
	for i := range out {
		out[i] = domain.Belief{ID: uuid.New(), Content: "belief"}
	}
	return out
}

func TestParseEvidence_ResolvesIndexes(t *testing.T) {
	beliefs := testBeliefs(2)

	raw := `[
		{"claim": "matched claim", "type": "factual", "belief_index": 1, "stance": "contradicting", "strength": 0.8},
		{"claim": "novel claim", "type": "feedback", "belief_index": "novel", "stance": "reinforcing", "strength": 0.5}
	]`

	evidence, err := parseEvidence(raw, beliefs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evidence) != 2 {
		t.Fatalf("items = %d, want 2", len(evidence))
	}

	if evidence[0].BeliefID == nil || *evidence[0].BeliefID != beliefs[1].ID {
		t.Errorf("index 1 did not resolve to second belief")
	}
	if evidence[0].Stance != domain.StanceContradicting {
		t.Errorf("stance = %s", evidence[0].Stance)
	}
	if evidence[1].BeliefID != nil {
		t.Errorf("novel claim carries a belief id")
	}
}

func TestParseEvidence_OutOfRangeIndexAndBadStance(t *testing.T) {
	beliefs := testBeliefs(1)

	raw := `[{"claim": "x", "type": "factual", "belief_index": 7, "stance": "hostile", "strength": 1.7}]`

	evidence, err := parseEvidence(raw, beliefs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evidence[0].BeliefID != nil {
		t.Errorf("out-of-range index resolved to a belief")
	}
	if evidence[0].Stance != domain.StanceNeutral {
		t.Errorf("invalid stance = %s, want neutral fallback", evidence[0].Stance)
	}
	if evidence[0].Strength != 1.0 {
		t.Errorf("strength = %f, want clamped 1.0", evidence[0].Strength)
	}
}

func TestParseEvidence_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n[{\"claim\": \"fenced\", \"type\": \"factual\", \"belief_index\": \"novel\", \"stance\": \"neutral\", \"strength\": 0.1}]\n```"

	evidence, err := parseEvidence(raw, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evidence) != 1 || evidence[0].Claim != "fenced" {
		t.Errorf("fenced payload not parsed: %+v", evidence)
	}
}

func TestParseEvidence_MalformedJSON(t *testing.T) {
	if _, err := parseEvidence("I could not produce JSON, sorry", nil); err == nil {
		t.Fatalf("expected error on malformed payload")
	}
}

func TestParseDiscoveries_ClampsAndValidates(t *testing.T) {
	others := testBeliefs(3)

	raw := `[
		{"belief_index": 0, "relation": "tension_shares", "strength": 1.4, "reasoning": "too strong"},
		{"belief_index": 1, "relation": "admires", "strength": -0.2, "reasoning": "unknown relation"},
		{"belief_index": 9, "relation": "supports", "strength": 0.5, "reasoning": "out of range"}
	]`

	discovered, err := parseDiscoveries(raw, others)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(discovered) != 2 {
		t.Fatalf("kept = %d, want 2 (out-of-range dropped)", len(discovered))
	}

	if discovered[0].Strength != 1.0 {
		t.Errorf("strength = %f, want clamped 1.0", discovered[0].Strength)
	}
	if discovered[1].Strength != 0.0 {
		t.Errorf("strength = %f, want clamped 0.0", discovered[1].Strength)
	}
	if discovered[1].Relation != domain.RelationSupports {
		t.Errorf("unknown relation = %s, want supports fallback", discovered[1].Relation)
	}
	if discovered[0].BeliefID != others[0].ID {
		t.Errorf("index 0 did not resolve")
	}
}

func TestParseReconstruction_RequiresRevisedBelief(t *testing.T) {
	if _, err := parseReconstruction(`{"analysis": "thin air", "confidence": 0.5}`); err == nil {
		t.Fatalf("expected error when revised_belief missing")
	}
}

func TestParseReconstruction_ClampsConfidence(t *testing.T) {
	raw := `{
		"analysis": "a",
		"revised_belief": "better statement",
		"confidence": 1.8,
		"cascade_updates": [{"belief": "neighbor text", "suggested_change": "soften", "new_tension_delta": 0.1}],
		"behavioral_changes": ["slow down"],
		"reasoning": "r"
	}`

	rec, err := parseReconstruction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Confidence != 1.0 {
		t.Errorf("confidence = %f, want clamped 1.0", rec.Confidence)
	}
	if len(rec.CascadeUpdates) != 1 || rec.CascadeUpdates[0].TensionDelta != 0.1 {
		t.Errorf("cascade updates not decoded: %+v", rec.CascadeUpdates)
	}
}
