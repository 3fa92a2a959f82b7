package reasoner

import (
	"context"
	"sync"

	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

// MockClient is a configurable in-memory reasoner for tests and for running
// the server without an API key. Zero-value fields produce benign defaults.
type MockClient struct {
	mu sync.Mutex

	RespondResponse     string
	EvidenceResponse    []domain.Evidence
	DiscoveryResponse   []domain.DiscoveredConnection
	ReconstructResponse *domain.Reconstruction
	RespondErr          error
	EvidenceErr         error
	DiscoveryErr        error
	ReconstructErr      error

	RespondCalls     []string
	EvidenceCalls    []string
	DiscoveryCalls   []domain.Belief
	ReconstructCalls []domain.ReconstructionInput
}

func NewMockClient() *MockClient {
	return &MockClient{
		RespondResponse: "mock response",
	}
}

func (m *MockClient) Respond(_ context.Context, _ string, userMessage string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RespondCalls = append(m.RespondCalls, userMessage)
	if m.RespondErr != nil {
		return "", m.RespondErr
	}
	return m.RespondResponse, nil
}

func (m *MockClient) ExtractEvidence(_ context.Context, userMessage, _ string, _ []domain.Belief) ([]domain.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EvidenceCalls = append(m.EvidenceCalls, userMessage)
	if m.EvidenceErr != nil {
		return nil, m.EvidenceErr
	}
	return m.EvidenceResponse, nil
}

func (m *MockClient) DiscoverConnections(_ context.Context, triggered domain.Belief, _ []domain.Belief) ([]domain.DiscoveredConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DiscoveryCalls = append(m.DiscoveryCalls, triggered)
	if m.DiscoveryErr != nil {
		return nil, m.DiscoveryErr
	}
	return m.DiscoveryResponse, nil
}

func (m *MockClient) Reconstruct(_ context.Context, input domain.ReconstructionInput) (*domain.Reconstruction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReconstructCalls = append(m.ReconstructCalls, input)
	if m.ReconstructErr != nil {
		return nil, m.ReconstructErr
	}
	if m.ReconstructResponse != nil {
		return m.ReconstructResponse, nil
	}
	return &domain.Reconstruction{
		Analysis:      "mock analysis",
		RevisedBelief: "mock revised belief",
		Confidence:    0.5,
		Reasoning:     "mock reasoning",
	}, nil
}
