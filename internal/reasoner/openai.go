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
	openaiDefaultBaseURL = "https://api.openai.com"
	openaiDefaultFast    = "gpt-4o-mini"
	openaiDefaultDeep    = "gpt-4o"
)

type OpenAIClient struct {
	apiKey        string
	baseURL       string
	modelFast     string
	modelRevision string
	httpClient    *http.Client
}

func NewOpenAIClient(apiKey string, opts Options) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:        apiKey,
		baseURL:       strings.TrimSuffix(opts.BaseURL, "/"),
		modelFast:     opts.ModelFast,
		modelRevision: opts.ModelRevision,
		httpClient:    &http.Client{},
	}
	if c.baseURL == "" {
		c.baseURL = openaiDefaultBaseURL
	}
	if c.modelFast == "" {
		c.modelFast = openaiDefaultFast
	}
	if c.modelRevision == "" {
		c.modelRevision = openaiDefaultDeep
	}
	return c
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) complete(ctx context.Context, model, system, user string) (string, error) {
	messages := make([]openaiMessage, 0, 2)
	if system != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: system})
	}
	messages = append(messages, openaiMessage{Role: "user", Content: user})

	body, err := json.Marshal(openaiRequest{Model: model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal openai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read openai response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result openaiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal openai response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("openai API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai API returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) Respond(ctx context.Context, system, userMessage string) (string, error) {
	return c.complete(ctx, c.modelFast, system, userMessage)
}

func (c *OpenAIClient) ExtractEvidence(ctx context.Context, userMessage, assistantResponse string, beliefs []domain.Belief) ([]domain.Evidence, error) {
	raw, err := c.complete(ctx, c.modelFast, evidenceSystem, evidencePrompt(userMessage, assistantResponse, beliefs))
	if err != nil {
		return nil, fmt.Errorf("extract evidence: %w", err)
	}
	return parseEvidence(raw, beliefs)
}

func (c *OpenAIClient) DiscoverConnections(ctx context.Context, triggered domain.Belief, others []domain.Belief) ([]domain.DiscoveredConnection, error) {
	raw, err := c.complete(ctx, c.modelFast, discoverySystem, discoveryPrompt(triggered, others))
	if err != nil {
		return nil, fmt.Errorf("discover connections: %w", err)
	}
	return parseDiscoveries(raw, others)
}

func (c *OpenAIClient) Reconstruct(ctx context.Context, input domain.ReconstructionInput) (*domain.Reconstruction, error) {
	raw, err := c.complete(ctx, c.modelRevision, revisionSystem, revisionPrompt(input))
	if err != nil {
		return nil, fmt.Errorf("reconstruct belief: %w", err)
	}
	return parseReconstruction(raw)
}
