package port

// Message is one chat turn sent to a language model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports actual token consumption for one provider call, as counted
// by the backend itself. Embedding calls fill InputTokens only.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add accumulates usage across calls.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// ModelPricing is a per-model price table in USD per 1M tokens.
type ModelPricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// Provider is the capability interface over a language-model backend:
// text generation, embeddings, and price lookup. Adding a backend means
// implementing this interface and registering it, not branching on strings.
type Provider interface {
	// GenerateText runs a chat completion and returns the generated text
	// together with the backend's reported token usage.
	GenerateText(model string, messages []Message, temperature float64) (string, Usage, error)

	// Embed generates one embedding vector per input text.
	Embed(texts []string) ([][]float32, Usage, error)

	// Pricing looks up the price table for a model. Unknown models get a
	// zero table, which makes cost estimates zero rather than failing.
	Pricing(model string) ModelPricing

	// Name identifies the provider ("openai", "mock").
	Name() string
}
