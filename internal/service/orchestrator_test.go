package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"github.com/juan-cardona/anxious-intelligence/internal/reasoner"
	"go.uber.org/zap"
)

func newTestOrchestrator(bs *mockBeliefStore, cs *mockConnectionStore, xs *mockContradictionStore, rs *mockRevisionStore, is *mockInteractionStore, mock domain.ReasonerClient) *Orchestrator {
	logger := zap.NewNop()
	tension := NewTensionService(bs, xs, 0.1, 0.15, 0.7, logger)
	engine := NewRevisionEngine(bs, cs, xs, rs, mock, 0.7, 3, 5*time.Second, logger)
	dissatisfaction := NewDissatisfactionService(bs, logger)
	return NewOrchestrator(bs, rs, is, mock, tension, engine, dissatisfaction, 0.7, logger)
}

func TestOrchestrator_CalmInteraction(t *testing.T) {
	beliefs := newMockBeliefStore()
	connections := newMockConnectionStore(beliefs)
	contradictions := newMockContradictionStore()
	revisions := newMockRevisionStore(beliefs, connections)
	interactions := newMockInteractionStore()

	beliefs.add(domain.Belief{Content: "I can help with code", Confidence: 0.8, Importance: 0.9})

	mock := reasoner.NewMockClient()
	mock.RespondResponse = "here is the answer"

	o := newTestOrchestrator(beliefs, connections, contradictions, revisions, interactions, mock)

	result, err := o.ProcessInteraction(context.Background(), "session-1", "can you help me?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Response != "here is the answer" {
		t.Errorf("response = %q", result.Response)
	}
	if result.State != "Calm" {
		t.Errorf("state = %s, want Calm", result.State)
	}
	if result.ActiveBeliefs != 1 {
		t.Errorf("active beliefs = %d, want 1", result.ActiveBeliefs)
	}
	if len(result.PreRevisions) != 0 || len(result.PostRevisions) != 0 {
		t.Errorf("revisions ran on a calm interaction")
	}

	if len(interactions.interactions) != 1 {
		t.Fatalf("interactions persisted = %d, want 1", len(interactions.interactions))
	}
	for _, i := range interactions.interactions {
		if i.RevisionTriggered {
			t.Errorf("revision flag set without revisions")
		}
		if i.SessionID != "session-1" {
			t.Errorf("session id = %q", i.SessionID)
		}
	}
}

func TestOrchestrator_EvidenceTriggersPostRevision(t *testing.T) {
	beliefs := newMockBeliefStore()
	connections := newMockConnectionStore(beliefs)
	contradictions := newMockContradictionStore()
	revisions := newMockRevisionStore(beliefs, connections)
	interactions := newMockInteractionStore()

	id := beliefs.add(domain.Belief{Content: "my summaries are always faithful", Tension: 0.6, Confidence: 0.8, Importance: 0.8})

	mock := reasoner.NewMockClient()
	mock.RespondResponse = "summarized"
	mock.EvidenceResponse = []domain.Evidence{
		{Claim: "the summary invented a quote", Type: "feedback", Stance: domain.StanceContradicting, BeliefID: &id, Strength: 1.0},
	}
	mock.ReconstructResponse = &domain.Reconstruction{
		RevisedBelief: "my summaries are usually faithful but can drift on quotes",
		Confidence:    0.6,
	}

	o := newTestOrchestrator(beliefs, connections, contradictions, revisions, interactions, mock)

	result, err := o.ProcessInteraction(context.Background(), "session-2", "summarize this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.EvidenceCount != 1 {
		t.Errorf("evidence count = %d, want 1", result.EvidenceCount)
	}
	if len(result.PostRevisions) != 1 {
		t.Fatalf("post revisions = %d, want 1", len(result.PostRevisions))
	}
	if result.PostRevisions[0].Status != StatusRevised {
		t.Errorf("post revision status = %s", result.PostRevisions[0].Status)
	}

	// The interaction carries the revision flag and the claims.
	for _, i := range interactions.interactions {
		if !i.RevisionTriggered {
			t.Errorf("revision flag not set")
		}
		if len(i.ExtractedClaims) != 1 {
			t.Errorf("persisted claims = %d, want 1", len(i.ExtractedClaims))
		}
	}
}

func TestOrchestrator_UrgentPreRevisionPass(t *testing.T) {
	beliefs := newMockBeliefStore()
	connections := newMockConnectionStore(beliefs)
	contradictions := newMockContradictionStore()
	revisions := newMockRevisionStore(beliefs, connections)
	interactions := newMockInteractionStore()

	// One important, tense belief pushes dissatisfaction over 0.6 and sits
	// above the revision threshold.
	beliefs.add(domain.Belief{Content: "everything I say lands perfectly", Tension: 0.9, Confidence: 0.9, Importance: 1.0})
	beliefs.add(domain.Belief{Content: "minor side belief", Tension: 0.5, Importance: 0.1})

	mock := reasoner.NewMockClient()
	mock.RespondResponse = "tempered answer"
	mock.ReconstructResponse = &domain.Reconstruction{
		RevisedBelief: "much of what I say lands, some does not",
		Confidence:    0.5,
	}

	o := newTestOrchestrator(beliefs, connections, contradictions, revisions, interactions, mock)

	result, err := o.ProcessInteraction(context.Background(), "session-3", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.PreRevisions) != 1 {
		t.Fatalf("pre revisions = %d, want 1", len(result.PreRevisions))
	}
	if result.PreRevisions[0].Status != StatusRevised {
		t.Errorf("pre revision status = %s", result.PreRevisions[0].Status)
	}
	// The successor starts at tension 0, so the final snapshot is calmer
	// than the one that forced the pass.
	if result.Dissatisfaction > 0.6 {
		t.Errorf("dissatisfaction = %f after urgent pass, want <= 0.6", result.Dissatisfaction)
	}
}

func TestOrchestrator_ExtractionFailureDegradesToNoEvidence(t *testing.T) {
	beliefs := newMockBeliefStore()
	connections := newMockConnectionStore(beliefs)
	contradictions := newMockContradictionStore()
	revisions := newMockRevisionStore(beliefs, connections)
	interactions := newMockInteractionStore()

	beliefs.add(domain.Belief{Content: "a belief", Tension: 0.2, Importance: 0.5})

	mock := reasoner.NewMockClient()
	mock.RespondResponse = "still answered"
	mock.EvidenceErr = errors.New("parse failure")

	o := newTestOrchestrator(beliefs, connections, contradictions, revisions, interactions, mock)

	result, err := o.ProcessInteraction(context.Background(), "session-4", "hi")
	if err != nil {
		t.Fatalf("extraction failure must not fail the interaction: %v", err)
	}
	if result.Response != "still answered" {
		t.Errorf("response = %q", result.Response)
	}
	if result.EvidenceCount != 0 {
		t.Errorf("evidence count = %d, want 0", result.EvidenceCount)
	}
}

func TestOrchestrator_ResponseFailureFailsInteraction(t *testing.T) {
	beliefs := newMockBeliefStore()
	connections := newMockConnectionStore(beliefs)
	contradictions := newMockContradictionStore()
	revisions := newMockRevisionStore(beliefs, connections)
	interactions := newMockInteractionStore()

	mock := reasoner.NewMockClient()
	mock.RespondErr = errors.New("model unavailable")

	o := newTestOrchestrator(beliefs, connections, contradictions, revisions, interactions, mock)

	if _, err := o.ProcessInteraction(context.Background(), "session-5", "hi"); err == nil {
		t.Fatalf("expected error when response generation fails")
	}
	if len(interactions.interactions) != 0 {
		t.Errorf("interaction persisted despite failed response")
	}
}

func TestOrchestrator_SubmitEvidenceDirect(t *testing.T) {
	beliefs := newMockBeliefStore()
	connections := newMockConnectionStore(beliefs)
	contradictions := newMockContradictionStore()
	revisions := newMockRevisionStore(beliefs, connections)
	interactions := newMockInteractionStore()

	id := beliefs.add(domain.Belief{Content: "direct evidence target", Tension: 0.65, Importance: 0.5})

	mock := reasoner.NewMockClient()
	mock.ReconstructResponse = &domain.Reconstruction{RevisedBelief: "adjusted", Confidence: 0.5}

	o := newTestOrchestrator(beliefs, connections, contradictions, revisions, interactions, mock)

	results, err := o.SubmitEvidence(context.Background(), []domain.Evidence{
		{Claim: "observed failure", Stance: domain.StanceContradicting, BeliefID: &id, Strength: 1.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Status != StatusRevised {
		t.Fatalf("results = %+v, want one revised", results)
	}
	if len(mock.RespondCalls) != 0 {
		t.Errorf("direct evidence path generated a response")
	}
}
