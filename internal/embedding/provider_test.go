package embedding

import (
	"context"
	"testing"
)

func TestNewClient_ProviderSelection(t *testing.T) {
	if _, err := NewClient(ProviderOpenAI, "", Options{}); err == nil {
		t.Errorf("openai provider accepted an empty api key")
	}
	if _, err := NewClient("word2vec", "key", Options{}); err == nil {
		t.Errorf("unknown provider accepted")
	}

	client, err := NewClient(ProviderMock, "", Options{})
	if err != nil {
		t.Fatalf("mock provider: %v", err)
	}
	vec, err := client.Embed(context.Background(), "I produce accurate responses")
	if err != nil {
		t.Fatalf("mock embed: %v", err)
	}
	if len(vec) != mockDimensions {
		t.Errorf("mock vector dims = %d, want %d", len(vec), mockDimensions)
	}
}

func TestNewOpenAIClient_Defaults(t *testing.T) {
	c := NewOpenAIClient("key", Options{})
	if c.baseURL != openAIDefaultBaseURL {
		t.Errorf("baseURL = %q, want default", c.baseURL)
	}
	if c.model != openAIDefaultModel {
		t.Errorf("model = %q, want default", c.model)
	}

	c = NewOpenAIClient("key", Options{BaseURL: "http://localhost:8089/", Model: "text-embedding-3-large"})
	if c.baseURL != "http://localhost:8089" {
		t.Errorf("baseURL = %q, trailing slash not trimmed", c.baseURL)
	}
	if c.model != "text-embedding-3-large" {
		t.Errorf("model = %q, option not applied", c.model)
	}
}

func TestMockClient_Deterministic(t *testing.T) {
	m := NewMockClient()

	a1, _ := m.Embed(context.Background(), "users trust my output")
	a2, _ := m.Embed(context.Background(), "users trust my output")
	b, _ := m.Embed(context.Background(), "complex requests need decomposition")

	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatalf("same text produced different vectors at dim %d", i)
		}
	}

	same := true
	for i := range a1 {
		if a1[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Errorf("different texts produced identical vectors")
	}
}
