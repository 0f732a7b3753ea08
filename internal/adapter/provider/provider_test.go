package provider

import (
	"strings"
	"testing"

	"techdocs/config"
	"techdocs/internal/port"
)

func TestRegistryUnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = "nonexistent"

	_, err := New(cfg)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "mock") || !strings.Contains(err.Error(), "openai") {
		t.Errorf("error should list available providers, got: %v", err)
	}
}

func TestRegistryMockProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = "mock"

	p, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "mock" {
		t.Errorf("expected provider name 'mock', got %q", p.Name())
	}
}

func TestOpenAIProviderRequiresAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKeyEnv = "TECHDOCS_TEST_MISSING_KEY"

	_, err := NewOpenAIProvider(cfg)
	if err == nil {
		t.Fatal("expected error when API key env is unset")
	}
	if strings.Contains(err.Error(), "sk-") {
		t.Errorf("error must not leak key material: %v", err)
	}
}

func TestMockEmbedDeterministic(t *testing.T) {
	p := NewMockProvider(64)

	first, usage, err := p.Embed([]string{"Go channels communicate by sending values."})
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := p.Embed([]string{"Go channels communicate by sending values."})
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 1 || len(first[0]) != 64 {
		t.Fatalf("unexpected embedding shape: %d x %d", len(first), len(first[0]))
	}
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("embedding not deterministic at dimension %d", i)
		}
	}
	if usage.InputTokens == 0 {
		t.Error("expected non-zero input token usage")
	}
}

func TestMockEmbedDistinguishesTexts(t *testing.T) {
	p := NewMockProvider(64)

	vectors, _, err := p.Embed([]string{"alpha text", "completely different beta"})
	if err != nil {
		t.Fatal(err)
	}

	same := true
	for i := range vectors[0] {
		if vectors[0][i] != vectors[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestMockCallAccounting(t *testing.T) {
	p := NewMockProvider(0)

	if _, _, err := p.Embed([]string{"one", "two"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.Embed([]string{"three"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.GenerateText("m", []port.Message{{Role: "user", Content: "hi"}}, 0); err != nil {
		t.Fatal(err)
	}

	if p.EmbedCalls() != 2 {
		t.Errorf("expected 2 embed calls, got %d", p.EmbedCalls())
	}
	if p.GenerateCalls() != 1 {
		t.Errorf("expected 1 generate call, got %d", p.GenerateCalls())
	}

	texts := p.EmbeddedTexts()
	want := []string{"one", "two", "three"}
	if len(texts) != len(want) {
		t.Fatalf("expected %d embedded texts, got %d", len(want), len(texts))
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("embedded text %d = %q, want %q", i, texts[i], want[i])
		}
	}
}
