// Package retriever holds the optional query-side transforms of the
// retrieval pipeline: HyDE query transformation and LLM reranking.
package retriever

import (
	"fmt"
	"strings"

	"techdocs/internal/port"
)

const hydeSystemPrompt = `You are a technical documentation assistant. Given a question,
write a short passage of documentation that would answer it.
Write as if the passage came from real technical documentation: factual tone,
concrete terminology, no meta commentary. Keep it concise (100-200 words max).
Do not explain - just write the hypothetical passage.`

// HyDETransform drafts a hypothetical answer document for a query. The
// draft is embedded for retrieval in place of the raw query, which tends
// to land closer to real documentation in embedding space.
type HyDETransform struct {
	provider port.Provider
	model    string
}

// NewHyDETransform creates a transform using the given generation model.
func NewHyDETransform(provider port.Provider, model string) *HyDETransform {
	return &HyDETransform{provider: provider, model: model}
}

// HypotheticalDocument generates the draft for a query.
func (t *HyDETransform) HypotheticalDocument(query string) (string, port.Usage, error) {
	messages := []port.Message{
		{Role: "system", Content: hydeSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Question: %s\n\nWrite a hypothetical documentation passage that answers this:", query)},
	}

	text, usage, err := t.provider.GenerateText(t.model, messages, 0.1)
	if err != nil {
		return "", usage, fmt.Errorf("failed to generate hypothetical document: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", usage, fmt.Errorf("hypothetical document generation returned empty text")
	}
	return text, usage, nil
}
