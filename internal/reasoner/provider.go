package reasoner

import (
	"fmt"

	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

// Provider constants
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Options configure a reasoner client. ModelRevision may be a larger model
// than ModelFast: reconstruction is the rare, expensive call.
type Options struct {
	BaseURL       string
	ModelFast     string
	ModelRevision string
}

// NewClient creates a reasoner client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty
// (except for mock).
func NewClient(provider, apiKey string, opts Options) (domain.ReasonerClient, error) {
	switch provider {
	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey, opts), nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey, opts), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown reasoner provider: %s (valid options: anthropic, openai, mock)", provider)
	}
}
