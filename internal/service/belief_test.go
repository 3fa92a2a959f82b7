package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"go.uber.org/zap"
)

func TestBeliefService_ReconnectOverwritesEdge(t *testing.T) {
	beliefs := newMockBeliefStore()
	connections := newMockConnectionStore(beliefs)
	svc := NewBeliefService(beliefs, connections, nil, zap.NewNop())

	a := beliefs.add(domain.Belief{Content: "I explain tradeoffs clearly", Importance: 0.6})
	b := beliefs.add(domain.Belief{Content: "users follow my reasoning", Importance: 0.5})

	if err := svc.Connect(context.Background(), a, b, "supports", 0.3, ""); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if err := svc.Connect(context.Background(), a, b, "contradicts", 0.9, ""); err != nil {
		t.Fatalf("second connect: %v", err)
	}

	// Same ordered pair: the second write replaces the edge, never duplicates it.
	if len(connections.edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(connections.edges))
	}
	edge, ok := connections.edges[[2]uuid.UUID{a, b}]
	if !ok {
		t.Fatalf("edge (a,b) missing")
	}
	if edge.Relation != domain.RelationContradicts {
		t.Errorf("relation = %s, want contradicts", edge.Relation)
	}
	if edge.Strength != 0.9 {
		t.Errorf("strength = %f, want 0.9", edge.Strength)
	}
}

func TestBeliefService_ConnectRejectsUnknownRelation(t *testing.T) {
	beliefs := newMockBeliefStore()
	connections := newMockConnectionStore(beliefs)
	svc := NewBeliefService(beliefs, connections, nil, zap.NewNop())

	a := beliefs.add(domain.Belief{Content: "a", Importance: 0.5})
	b := beliefs.add(domain.Belief{Content: "b", Importance: 0.5})

	if err := svc.Connect(context.Background(), a, b, "admires", 0.5, ""); err != ErrInvalidRelation {
		t.Fatalf("err = %v, want ErrInvalidRelation", err)
	}
	if len(connections.edges) != 0 {
		t.Errorf("invalid relation persisted an edge")
	}
}

func TestListAboveTensionFiltersAndOrders(t *testing.T) {
	beliefs := newMockBeliefStore()
	beliefs.add(domain.Belief{Content: "highest", Tension: 0.9, Importance: 0.5})
	beliefs.add(domain.Belief{Content: "well below", Tension: 0.5, Importance: 0.5})
	beliefs.add(domain.Belief{Content: "just over", Tension: 0.71, Importance: 0.5})
	beliefs.add(domain.Belief{Content: "just under", Tension: 0.69, Importance: 0.5})

	got, err := beliefs.ListAboveTension(context.Background(), 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{0.9, 0.71}
	if len(got) != len(want) {
		t.Fatalf("candidates = %d, want %d", len(got), len(want))
	}
	for i, tension := range want {
		if got[i].Tension != tension {
			t.Errorf("candidate %d tension = %f, want %f (descending order)", i, got[i].Tension, tension)
		}
	}
}
