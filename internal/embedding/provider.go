package embedding

import (
	"fmt"

	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Options tunes the embedding transport. Zero values fall back to the
// provider's defaults.
type Options struct {
	BaseURL string
	Model   string
}

// NewClient builds the belief-content embedder for the configured provider.
// Embeddings only decorate beliefs for similarity lookup; the mock provider
// keeps the graph mechanics runnable without an OpenAI key.
func NewClient(provider, apiKey string, opts Options) (domain.EmbeddingClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai embedding provider")
		}
		return NewOpenAIClient(apiKey, opts), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q (valid: openai, mock)", provider)
	}
}
