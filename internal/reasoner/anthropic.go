package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicDefaultFast    = "claude-3-5-haiku-20241022"
	anthropicDefaultDeep    = "claude-sonnet-4-20250514"
	anthropicVersion        = "2023-06-01"
)

type AnthropicClient struct {
	apiKey        string
	baseURL       string
	modelFast     string
	modelRevision string
	httpClient    *http.Client
}

func NewAnthropicClient(apiKey string, opts Options) *AnthropicClient {
	c := &AnthropicClient{
		apiKey:        apiKey,
		baseURL:       strings.TrimSuffix(opts.BaseURL, "/"),
		modelFast:     opts.ModelFast,
		modelRevision: opts.ModelRevision,
		httpClient:    &http.Client{},
	}
	if c.baseURL == "" {
		c.baseURL = anthropicDefaultBaseURL
	}
	if c.modelFast == "" {
		c.modelFast = anthropicDefaultFast
	}
	if c.modelRevision == "" {
		c.modelRevision = anthropicDefaultDeep
	}
	return c
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) complete(ctx context.Context, model, system, user string, maxTokens int) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal anthropic response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("anthropic API error: %s", result.Error.Message)
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic API returned no text content")
	}

	return strings.TrimSpace(sb.String()), nil
}

func (c *AnthropicClient) Respond(ctx context.Context, system, userMessage string) (string, error) {
	return c.complete(ctx, c.modelFast, system, userMessage, 4096)
}

func (c *AnthropicClient) ExtractEvidence(ctx context.Context, userMessage, assistantResponse string, beliefs []domain.Belief) ([]domain.Evidence, error) {
	raw, err := c.complete(ctx, c.modelFast, evidenceSystem, evidencePrompt(userMessage, assistantResponse, beliefs), 2048)
	if err != nil {
		return nil, fmt.Errorf("extract evidence: %w", err)
	}
	return parseEvidence(raw, beliefs)
}

func (c *AnthropicClient) DiscoverConnections(ctx context.Context, triggered domain.Belief, others []domain.Belief) ([]domain.DiscoveredConnection, error) {
	raw, err := c.complete(ctx, c.modelFast, discoverySystem, discoveryPrompt(triggered, others), 2048)
	if err != nil {
		return nil, fmt.Errorf("discover connections: %w", err)
	}
	return parseDiscoveries(raw, others)
}

func (c *AnthropicClient) Reconstruct(ctx context.Context, input domain.ReconstructionInput) (*domain.Reconstruction, error) {
	raw, err := c.complete(ctx, c.modelRevision, revisionSystem, revisionPrompt(input), 4096)
	if err != nil {
		return nil, fmt.Errorf("reconstruct belief: %w", err)
	}
	return parseReconstruction(raw)
}
