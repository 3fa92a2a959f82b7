package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"github.com/juan-cardona/anxious-intelligence/internal/store"
)

type mockBeliefStore struct {
	beliefs map[uuid.UUID]*domain.Belief
	degrees map[uuid.UUID]int

	reinforceCalls  []uuid.UUID
	addTensionCalls []uuid.UUID
}

func newMockBeliefStore() *mockBeliefStore {
	return &mockBeliefStore{
		beliefs: make(map[uuid.UUID]*domain.Belief),
		degrees: make(map[uuid.UUID]int),
	}
}

func (m *mockBeliefStore) add(b domain.Belief) uuid.UUID {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Domain == "" {
		b.Domain = "self"
	}
	b.IsActive = true
	b.CreatedAt = time.Now()
	m.beliefs[b.ID] = &b
	return b.ID
}

func (m *mockBeliefStore) Create(ctx context.Context, b *domain.Belief) error {
	b.ID = uuid.New()
	if b.Domain == "" {
		b.Domain = "self"
	}
	b.IsActive = true
	b.CreatedAt = time.Now()
	cp := *b
	m.beliefs[b.ID] = &cp
	return nil
}

func (m *mockBeliefStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Belief, error) {
	b, ok := m.beliefs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBeliefStore) ListActive(ctx context.Context, beliefDomain string) ([]domain.Belief, error) {
	out := make([]domain.Belief, 0, len(m.beliefs))
	for _, b := range m.beliefs {
		if !b.IsActive {
			continue
		}
		if beliefDomain != "" && b.Domain != beliefDomain {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out, nil
}

func (m *mockBeliefStore) ListAboveTension(ctx context.Context, threshold float64) ([]domain.Belief, error) {
	out := make([]domain.Belief, 0)
	for _, b := range m.beliefs {
		if b.IsActive && b.Tension >= threshold {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tension > out[j].Tension })
	return out, nil
}

func (m *mockBeliefStore) Reinforce(ctx context.Context, id uuid.UUID, increment float64) (*domain.Belief, error) {
	b, ok := m.beliefs[id]
	if !ok || !b.IsActive {
		return nil, store.ErrNotFound
	}
	b.Confidence = domain.ReinforcedConfidence(b.Confidence, increment)
	b.ReinforcementCount++
	now := time.Now()
	b.LastReinforced = &now
	m.reinforceCalls = append(m.reinforceCalls, id)
	cp := *b
	return &cp, nil
}

func (m *mockBeliefStore) AddTension(ctx context.Context, id uuid.UUID, delta float64) (*domain.Belief, error) {
	b, ok := m.beliefs[id]
	if !ok || !b.IsActive {
		return nil, store.ErrNotFound
	}
	b.Tension = domain.RaisedTension(b.Tension, delta)
	now := time.Now()
	b.LastChallenged = &now
	m.addTensionCalls = append(m.addTensionCalls, id)
	cp := *b
	return &cp, nil
}

func (m *mockBeliefStore) Supersede(ctx context.Context, oldID, newID uuid.UUID) error {
	b, ok := m.beliefs[oldID]
	if !ok || !b.IsActive {
		return store.ErrNotFound
	}
	b.IsActive = false
	b.SupersededBy = &newID
	now := time.Now()
	b.RevisedAt = &now
	return nil
}

func (m *mockBeliefStore) TensionProfile(ctx context.Context) ([]domain.TensionWeight, error) {
	out := make([]domain.TensionWeight, 0, len(m.beliefs))
	for _, b := range m.beliefs {
		if !b.IsActive {
			continue
		}
		out = append(out, domain.TensionWeight{
			BeliefID:    b.ID,
			Content:     b.Content,
			Domain:      b.Domain,
			Tension:     b.Tension,
			Confidence:  b.Confidence,
			Importance:  b.Importance,
			Connections: m.degrees[b.ID],
		})
	}
	return out, nil
}

func (m *mockBeliefStore) Count(ctx context.Context) (int, error) {
	count := 0
	for _, b := range m.beliefs {
		if b.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *mockBeliefStore) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	return nil
}

func (m *mockBeliefStore) FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.Belief, error) {
	return nil, nil
}

type mockConnectionStore struct {
	beliefs *mockBeliefStore

	edges   map[[2]uuid.UUID]*domain.Connection
	upserts []domain.Connection
}

func newMockConnectionStore(bs *mockBeliefStore) *mockConnectionStore {
	return &mockConnectionStore{
		beliefs: bs,
		edges:   make(map[[2]uuid.UUID]*domain.Connection),
	}
}

func (m *mockConnectionStore) Upsert(ctx context.Context, c *domain.Connection) error {
	cp := *c
	cp.Strength = domain.Clamp01(cp.Strength)
	m.edges[[2]uuid.UUID{c.BeliefA, c.BeliefB}] = &cp
	m.upserts = append(m.upserts, cp)
	return nil
}

func (m *mockConnectionStore) Connected(ctx context.Context, id uuid.UUID, hops int) ([]domain.Belief, error) {
	seen := map[uuid.UUID]bool{id: true}
	frontier := []uuid.UUID{id}
	out := make([]domain.Belief, 0)

	for level := 0; level < hops; level++ {
		next := make([]uuid.UUID, 0)
		for _, cur := range frontier {
			for key := range m.edges {
				var other uuid.UUID
				switch cur {
				case key[0]:
					other = key[1]
				case key[1]:
					other = key[0]
				default:
					continue
				}
				if seen[other] {
					continue
				}
				seen[other] = true
				if b, ok := m.beliefs.beliefs[other]; ok && b.IsActive {
					out = append(out, *b)
					next = append(next, other)
				}
			}
		}
		frontier = next
	}
	return out, nil
}

type mockContradictionStore struct {
	entries []domain.ContradictionEntry
}

func newMockContradictionStore() *mockContradictionStore {
	return &mockContradictionStore{}
}

func (m *mockContradictionStore) Log(ctx context.Context, beliefID uuid.UUID, interactionID *uuid.UUID, evidence string, tensionDelta float64) error {
	m.entries = append(m.entries, domain.ContradictionEntry{
		ID:            uuid.New(),
		BeliefID:      beliefID,
		InteractionID: interactionID,
		Evidence:      evidence,
		TensionDelta:  tensionDelta,
		CreatedAt:     time.Now(),
	})
	return nil
}

func (m *mockContradictionStore) Recent(ctx context.Context, beliefID uuid.UUID, limit int) ([]domain.ContradictionEntry, error) {
	out := make([]domain.ContradictionEntry, 0)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].BeliefID == beliefID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// mockRevisionStore mimics the transactional supersession against the
// belief and connection mocks.
type mockRevisionStore struct {
	beliefs     *mockBeliefStore
	connections *mockConnectionStore

	revisions []domain.Revision
	applyErr  error
}

func newMockRevisionStore(bs *mockBeliefStore, cs *mockConnectionStore) *mockRevisionStore {
	return &mockRevisionStore{beliefs: bs, connections: cs}
}

func (m *mockRevisionStore) Apply(ctx context.Context, p domain.ApplyRevisionParams) (*domain.ApplyRevisionResult, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}

	successor := domain.Belief{
		Content:    p.NewContent,
		Domain:     p.Old.Domain,
		Confidence: domain.Clamp01(p.NewConfidence),
		Tension:    0,
		Importance: p.Old.Importance,
	}
	if err := m.beliefs.Create(ctx, &successor); err != nil {
		return nil, err
	}
	if err := m.beliefs.Supersede(ctx, p.Old.ID, successor.ID); err != nil {
		return nil, err
	}
	for _, n := range p.NeighborIDs {
		if err := m.connections.Upsert(ctx, &domain.Connection{
			BeliefA:  successor.ID,
			BeliefB:  n,
			Relation: domain.RelationSupports,
			Strength: 0.5,
			Method:   domain.ConnectionMethodRelink,
		}); err != nil {
			return nil, err
		}
	}

	rev := domain.Revision{
		ID:              uuid.New(),
		OldBeliefID:     p.Old.ID,
		NewBeliefID:     successor.ID,
		TriggerTension:  p.Old.Tension,
		EvidenceSummary: p.EvidenceSummary,
		Reasoning:       p.Reasoning,
		CreatedAt:       time.Now(),
		OldContent:      p.Old.Content,
		NewContent:      successor.Content,
	}
	m.revisions = append(m.revisions, rev)

	return &domain.ApplyRevisionResult{NewBelief: successor, RevisionID: rev.ID}, nil
}

func (m *mockRevisionStore) SetCascaded(ctx context.Context, revisionID uuid.UUID, beliefIDs []uuid.UUID) error {
	for i := range m.revisions {
		if m.revisions[i].ID == revisionID {
			m.revisions[i].CascadedBeliefs = beliefIDs
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mockRevisionStore) Recent(ctx context.Context, limit int) ([]domain.Revision, error) {
	out := make([]domain.Revision, 0, limit)
	for i := len(m.revisions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.revisions[i])
	}
	return out, nil
}

type mockInteractionStore struct {
	interactions map[uuid.UUID]*domain.Interaction
	createErr    error
}

func newMockInteractionStore() *mockInteractionStore {
	return &mockInteractionStore{interactions: make(map[uuid.UUID]*domain.Interaction)}
}

func (m *mockInteractionStore) Create(ctx context.Context, i *domain.Interaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	i.ID = uuid.New()
	i.CreatedAt = time.Now()
	cp := *i
	m.interactions[i.ID] = &cp
	return nil
}

func (m *mockInteractionStore) MarkRevisionTriggered(ctx context.Context, id uuid.UUID) error {
	i, ok := m.interactions[id]
	if !ok {
		return store.ErrNotFound
	}
	i.RevisionTriggered = true
	return nil
}
