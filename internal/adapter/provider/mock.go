package provider

import (
	"crypto/sha256"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"techdocs/config"
	"techdocs/internal/adapter/chunker"
	"techdocs/internal/port"
)

// MockProvider is a deterministic in-process provider for tests and
// offline runs. It fabricates embeddings from a hash of the text and
// counts every call so tests can assert on spend.
type MockProvider struct {
	Dim int

	// GenerateFunc overrides text generation when set.
	GenerateFunc func(model string, messages []port.Message) string

	generateCalls atomic.Int64
	embedCalls    atomic.Int64

	mu            sync.Mutex
	embeddedTexts []string
}

// NewMockProvider creates a mock with the given embedding dimension.
func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 64
	}
	return &MockProvider{Dim: dim}
}

func newMockFromConfig(*config.Config) (port.Provider, error) {
	return NewMockProvider(64), nil
}

// GenerateText returns a canned answer echoing the last user message, with
// usage derived from the approximate token count.
func (p *MockProvider) GenerateText(model string, messages []port.Message, temperature float64) (string, port.Usage, error) {
	p.generateCalls.Add(1)

	var prompt string
	for _, m := range messages {
		prompt += m.Content + "\n"
	}

	text := "mock answer"
	if p.GenerateFunc != nil {
		text = p.GenerateFunc(model, messages)
	} else if len(messages) > 0 {
		text = "mock answer for: " + messages[len(messages)-1].Content
	}

	usage := port.Usage{
		InputTokens:  chunker.CountTokens(prompt),
		OutputTokens: chunker.CountTokens(text),
	}
	return text, usage, nil
}

// Embed fabricates one deterministic vector per text. Identical texts
// embed identically and unrelated texts score visibly lower, which keeps
// similarity thresholds meaningful in tests.
func (p *MockProvider) Embed(texts []string) ([][]float32, port.Usage, error) {
	p.embedCalls.Add(1)
	p.mu.Lock()
	p.embeddedTexts = append(p.embeddedTexts, texts...)
	p.mu.Unlock()

	var usage port.Usage
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = mockVector(text, p.Dim)
		tokens := chunker.CountTokens(text)
		if tokens == 0 {
			tokens = 1
		}
		usage.InputTokens += tokens
	}
	return embeddings, usage, nil
}

// mockVector expands a hash of the text into a unit-ish direction and
// prepends a shared bias component. The bias keeps every pairwise cosine
// similarity inside [0, 1]: identical texts score 1, unrelated texts land
// around 0.5.
func mockVector(text string, dim int) []float32 {
	if dim < 2 {
		dim = 2
	}

	hash := make([]float64, dim-1)
	var block [sha256.Size]byte
	var norm float64
	for i := range hash {
		if i%sha256.Size == 0 {
			block = sha256.Sum256([]byte(fmt.Sprintf("%s#%d", text, i/sha256.Size)))
		}
		hash[i] = float64(block[i%sha256.Size]) - 127.5
		norm += hash[i] * hash[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}

	v := make([]float32, dim)
	v[0] = 1
	for i, h := range hash {
		v[i+1] = float32(h / norm)
	}
	return v
}

// Pricing returns a flat non-zero table so cost estimates are exercised.
func (p *MockProvider) Pricing(model string) port.ModelPricing {
	return port.ModelPricing{InputPer1M: 0.10, OutputPer1M: 0.40}
}

// Name identifies this provider.
func (p *MockProvider) Name() string {
	return "mock"
}

// GenerateCalls reports how many chat completions have run.
func (p *MockProvider) GenerateCalls() int {
	return int(p.generateCalls.Load())
}

// EmbedCalls reports how many embedding calls have run.
func (p *MockProvider) EmbedCalls() int {
	return int(p.embedCalls.Load())
}

// EmbeddedTexts returns every text passed to Embed, in call order.
func (p *MockProvider) EmbeddedTexts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.embeddedTexts))
	copy(out, p.embeddedTexts)
	return out
}
